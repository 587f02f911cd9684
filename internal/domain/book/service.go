package book

import (
	"strings"
)

// ValidateNew 新书入库前的基本校验
// 业务规则:
// - ISBN不能为空(格式校验由调用方负责)
// - 副本数必须>=0
func ValidateNew(isbn string, totalCopies int) error {
	if strings.TrimSpace(isbn) == "" {
		return ErrInvalidISBN
	}
	if totalCopies < 0 {
		return ErrInvalidCopies
	}
	return nil
}
