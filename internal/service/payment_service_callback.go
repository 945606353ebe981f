package service

import (
	"context"
	"errors"
	"time"

	"github.com/laptop-next/internal/cache"
	"github.com/laptop-next/internal/logger"
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/payment/zalopay"
)

// CallbackAck 返回给网关的确认体
type CallbackAck struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

// HandleCallback 处理网关异步回调。
// 验签在任何业务处理之前执行；验签失败返回 -1（网关不再重试），
// 业务处理失败返回 0（网关稍后重试），成功与重复投递都返回 1。
func (s *PaymentService) HandleCallback(ctx context.Context, data, mac string) CallbackAck {
	if err := zalopay.VerifyCallback(s.gateway, data, mac); err != nil {
		logger.Warnw("payment_callback_signature_invalid", "error", err)
		return CallbackAck{ReturnCode: zalopay.AckInvalidMac, ReturnMessage: "mac not equal"}
	}

	cb, err := zalopay.ParseCallback(data)
	if err != nil {
		logger.Warnw("payment_callback_payload_invalid", "error", err)
		return CallbackAck{ReturnCode: zalopay.AckInvalidMac, ReturnMessage: "payload invalid"}
	}

	// 重试风暴防护：短窗口内同一交易号只处理一次，
	// 命中去重的投递直接按成功确认。
	dedupeKey := cache.CallbackDedupeKey(cb.AppTransID)
	fresh, err := cache.AcquireLock(ctx, dedupeKey, 30*time.Second)
	if err != nil {
		logger.Warnw("payment_callback_dedupe_failed", "app_trans_id", cb.AppTransID, "error", err)
	} else if !fresh {
		logger.Infow("payment_callback_deduped", "app_trans_id", cb.AppTransID)
		return CallbackAck{ReturnCode: zalopay.AckSuccess, ReturnMessage: "success"}
	}

	txn, err := s.paymentRepo.GetByAppTransID(cb.AppTransID)
	if err != nil {
		logger.Errorw("payment_callback_lookup_failed", "app_trans_id", cb.AppTransID, "error", err)
		return CallbackAck{ReturnCode: zalopay.AckRetry, ReturnMessage: "internal error"}
	}
	if txn == nil {
		// 未知交易号不重试，重试也不会出现对应流水
		logger.Warnw("payment_callback_unknown_trans", "app_trans_id", cb.AppTransID)
		return CallbackAck{ReturnCode: zalopay.AckInvalidMac, ReturnMessage: "transaction not found"}
	}

	if cb.Amount != txn.Amount.VNDAmount() {
		logger.Errorw("payment_callback_amount_mismatch",
			"app_trans_id", cb.AppTransID,
			"expected", txn.Amount.VNDAmount(),
			"got", cb.Amount,
		)
		return CallbackAck{ReturnCode: zalopay.AckInvalidMac, ReturnMessage: "amount mismatch"}
	}

	var payload models.JSON
	payload = map[string]interface{}{
		"app_trans_id": cb.AppTransID,
		"zp_trans_id":  cb.ZPTransID,
		"amount":       cb.Amount,
		"server_time":  cb.ServerTime,
		"channel":      cb.Channel,
	}

	applied, err := s.applyPaymentSuccess(txn, cb.ZPTransID, payload)
	if err != nil {
		if errors.Is(err, ErrOrderStateConflict) {
			// 订单已被取消或退货，确认回调但不落支付标记
			logger.Warnw("payment_callback_order_state_conflict",
				"app_trans_id", cb.AppTransID,
				"order_id", txn.OrderID,
			)
			return CallbackAck{ReturnCode: zalopay.AckSuccess, ReturnMessage: "order closed"}
		}
		logger.Errorw("payment_callback_apply_failed",
			"app_trans_id", cb.AppTransID,
			"order_id", txn.OrderID,
			"error", err,
		)
		return CallbackAck{ReturnCode: zalopay.AckRetry, ReturnMessage: "internal error"}
	}

	if applied {
		logger.Infow("payment_callback_applied",
			"app_trans_id", cb.AppTransID,
			"order_id", txn.OrderID,
			"zp_trans_id", cb.ZPTransID,
		)
	} else {
		logger.Infow("payment_callback_replayed",
			"app_trans_id", cb.AppTransID,
			"order_id", txn.OrderID,
		)
	}
	return CallbackAck{ReturnCode: zalopay.AckSuccess, ReturnMessage: "success"}
}
