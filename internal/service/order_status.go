package service

import (
	"strings"

	"github.com/laptop-next/internal/constants"
)

// 订单状态机。正向流转 pending→confirmed→shipping→delivered，
// 取消允许从任意非终态进入，退货仅允许从 shipping 进入。
// 终态（delivered/cancelled/returned）拒绝一切流转。
var orderStatusRank = map[string]int{
	constants.OrderStatusPending:   0,
	constants.OrderStatusConfirmed: 1,
	constants.OrderStatusShipping:  2,
	constants.OrderStatusDelivered: 3,
}

var orderTerminalStatuses = map[string]bool{
	constants.OrderStatusDelivered: true,
	constants.OrderStatusCancelled: true,
	constants.OrderStatusReturned:  true,
}

// IsValidOrderStatus 判断状态值是否在闭集内
func IsValidOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusShipping,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled,
		constants.OrderStatusReturned:
		return true
	}
	return false
}

// IsTerminalOrderStatus 判断是否终态
func IsTerminalOrderStatus(status string) bool {
	return orderTerminalStatuses[normalizeStatus(status)]
}

// CanTransitOrderStatus 判断 from 到 to 是否合法流转
func CanTransitOrderStatus(from, to string) bool {
	from = normalizeStatus(from)
	to = normalizeStatus(to)
	if !IsValidOrderStatus(to) {
		return false
	}
	if orderTerminalStatuses[from] {
		return false
	}
	if from == to {
		return false
	}
	switch to {
	case constants.OrderStatusCancelled:
		return true
	case constants.OrderStatusReturned:
		return from == constants.OrderStatusShipping
	}
	fromRank, okFrom := orderStatusRank[from]
	toRank, okTo := orderStatusRank[to]
	if !okFrom || !okTo {
		return false
	}
	// 禁止回退
	return toRank > fromRank
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
