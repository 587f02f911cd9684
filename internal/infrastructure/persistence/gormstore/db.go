package gormstore

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架，生产环境MySQL，本地运行和测试使用SQLite
// 2. TranslateError打开后唯一键冲突统一转换为gorm.ErrDuplicatedKey
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 选择驱动
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.Database.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.Database.DSN())
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	// 3. 连接数据库
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	if cfg.Database.Driver == config.DriverSQLite {
		// SQLite同一时间只允许一个写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	slog.Info("database connected", "driver", cfg.Database.Driver)

	// 6. 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// autoMigrate 自动迁移表结构
// 注意：这里使用GORM模型（带tag），不是domain层的实体
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&MemberModel{},
		&LoanModel{},
	)
}

// BookModel GORM图书模型
// 设计说明:
// 1. ISBN是主键(业务唯一标识)
// 2. available_copies随借阅记录的写入/归还在同一事务内增减
// 3. 书名、作者建索引用于搜索
type BookModel struct {
	ISBN            string    `gorm:"column:isbn;primaryKey;size:20;comment:ISBN号"`
	Title           string    `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author          string    `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher       string    `gorm:"size:100;comment:出版社"`
	PublicationYear int       `gorm:"comment:出版年份"`
	TotalCopies     int       `gorm:"not null;comment:馆藏副本总数"`
	AvailableCopies int       `gorm:"not null;comment:在架副本数"`
	CreatedAt       time.Time `gorm:"comment:入库时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// MemberModel GORM会员模型
// 罚款使用int64存储"分"
type MemberModel struct {
	MemberID       string    `gorm:"column:member_id;primaryKey;size:32;comment:会员编号"`
	Name           string    `gorm:"size:100;not null;comment:姓名"`
	Email          string    `gorm:"size:100;comment:邮箱"`
	Phone          string    `gorm:"size:30;comment:电话"`
	Address        string    `gorm:"size:255;comment:地址"`
	MembershipDate time.Time `gorm:"comment:入会时间"`
	IsActive       bool      `gorm:"not null;comment:是否启用"`
	TotalFines     int64     `gorm:"not null;default:0;comment:累计未缴罚款(分)"`
}

// TableName 指定表名
func (MemberModel) TableName() string {
	return "members"
}

// LoanModel GORM借阅记录模型
// 设计说明:
// 1. record_id自增,只追加
// 2. return_date为NULL表示未归还
// 3. (member_id, isbn, return_date)复合索引用于查找未归还记录
type LoanModel struct {
	ID         uint       `gorm:"column:record_id;primaryKey;autoIncrement"`
	MemberID   string     `gorm:"index:idx_open_loan;size:32;not null;comment:会员编号"`
	ISBN       string     `gorm:"column:isbn;index:idx_open_loan;size:20;not null;comment:ISBN号"`
	BorrowDate time.Time  `gorm:"not null;comment:借出时间"`
	DueDate    time.Time  `gorm:"not null;comment:到期时间"`
	ReturnDate *time.Time `gorm:"index:idx_open_loan;comment:归还时间(NULL表示未归还)"`
	FinePaid   int64      `gorm:"not null;default:0;comment:结算罚款(分)"`
}

// TableName 指定表名
func (LoanModel) TableName() string {
	return "borrowing_records"
}
