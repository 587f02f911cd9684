// Package saga 实现按步骤执行、失败时逆序补偿的事务编排
//
// 核心思想：
// 1. 将一个操作拆分为多个步骤
// 2. 每个步骤可以有对应的补偿操作
// 3. 某步失败时，按逆序执行已完成步骤的补偿操作（失败步骤自身不补偿）
//
// 在本项目中用于借书流程：内存中的预占（扣减副本、登记持有）在持久化写入失败后必须撤销。
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Step 表示Saga中的一个步骤
// Action是正向操作，Compensate是补偿操作，二者都可以为nil
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// StepError 某个步骤执行失败
// 调用方可以通过errors.As取出失败步骤的名称，再决定如何向上报告
type StepError struct {
	Index int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("步骤[%d:%s]执行失败: %v", e.Index, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep 返回失败步骤名称，err不是StepError时返回空串
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Name
	}
	return ""
}

// Saga 表示一个Saga事务
type Saga struct {
	steps        []Step
	executed     []Step
	timeout      time.Duration
	logger       *slog.Logger
	compensated  int
	compensateFn func(step string, err error)
}

// Option Saga配置项
type Option func(*Saga)

// WithLogger 补偿失败时使用的logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Saga) {
		s.logger = logger
	}
}

// OnCompensate 每执行一个补偿操作后回调（err为补偿自身的错误）
func OnCompensate(fn func(step string, err error)) Option {
	return func(s *Saga) {
		s.compensateFn = fn
	}
}

// NewSaga 创建一个新的Saga事务
// timeout<=0表示不设置整体超时
//
//	s := saga.NewSaga(0)
//	s.AddStep("reserve copy", reserve, release)
//	s.AddStep("record loan", record, nil)
//	err := s.Execute(ctx)
func NewSaga(timeout time.Duration, opts ...Option) *Saga {
	s := &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep 添加一个Saga步骤
// 步骤按添加顺序执行，按逆序补偿；补偿操作只能依赖自己的Action结果
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行Saga事务
//
// 执行流程：
// 1. 按顺序执行每个步骤的Action
// 2. 某步失败或超时，逆序执行已完成步骤的Compensate
// 3. 返回*StepError（超时时Name为"timeout"）
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			// 补偿使用新Context，避免补偿也被取消
			s.compensate(context.WithoutCancel(ctx))
			return &StepError{Index: i, Name: "timeout", Err: err}
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.WithoutCancel(ctx))
				return &StepError{Index: i, Name: step.Name, Err: err}
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// Compensated 最近一次Execute执行了多少个补偿操作
func (s *Saga) Compensated() int {
	return s.compensated
}

// compensate 执行补偿流程
// 即使某个Compensate失败，也继续执行后续补偿
func (s *Saga) compensate(ctx context.Context) {
	s.compensated = 0
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}

		err := step.Compensate(ctx)
		s.compensated++
		if err != nil {
			s.logger.ErrorContext(ctx, "saga compensation failed", "step", step.Name, "error", err)
		}
		if s.compensateFn != nil {
			s.compensateFn(step.Name, err)
		}
	}

	s.executed = nil
}
