package service

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderNoAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNo 生成订单编号：ORDER-<UTC日期>-<6位大写base36>。
// 未对撞库重试，日级别 36^6 空间下冲突概率可忽略，
// 数据库唯一索引兜底。
func GenerateOrderNo(now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	suffix := make([]byte, 6)
	for i, b := range buf {
		suffix[i] = orderNoAlphabet[int(b)%len(orderNoAlphabet)]
	}
	return fmt.Sprintf("ORDER-%s-%s", now.UTC().Format("20060102"), suffix), nil
}
