package zalopay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// AckSuccess 回调确认码：处理成功，网关停止重试
	AckSuccess = 1
	// AckRetry 回调确认码：内部错误，网关稍后重试
	AckRetry = 0
	// AckInvalidMac 回调确认码：签名不合法，网关不再重试
	AckInvalidMac = -1

	defaultCreatePath = "/v2/create"
	defaultQueryPath  = "/v2/query"
)

var (
	ErrConfigInvalid    = errors.New("zalopay config invalid")
	ErrRequestFailed    = errors.New("zalopay request failed")
	ErrResponseInvalid  = errors.New("zalopay response invalid")
	ErrSignatureInvalid = errors.New("zalopay signature invalid")
)

// Config ZaloPay 网关配置。key1 用于主动请求签名，key2 用于回调验签。
type Config struct {
	AppID       string `json:"app_id"`       // 应用ID
	Key1        string `json:"key1"`         // 请求签名密钥
	Key2        string `json:"key2"`         // 回调验签密钥
	GatewayURL  string `json:"gateway_url"`  // 网关地址
	CreatePath  string `json:"create_path"`  // 下单接口路径
	QueryPath   string `json:"query_path"`   // 查询接口路径
	CallbackURL string `json:"callback_url"` // 异步回调地址
	RedirectURL string `json:"redirect_url"` // 同步跳转地址
}

// CreateInput 下单输入
type CreateInput struct {
	AppTransID string // 网关交易号（yymmdd_orderno）
	AppUser    string // 买家标识
	Amount     int64  // 金额（VND 整数）
	Subject    string // 商品描述
	EmbedData  map[string]interface{}
	Items      []map[string]interface{}
}

// CreateResult 下单结果
type CreateResult struct {
	OrderURL     string
	ZPTransToken string
	Raw          map[string]interface{}
}

// CallbackData 回调 data 字段解出的内容
type CallbackData struct {
	AppID      int64  `json:"app_id"`
	AppTransID string `json:"app_trans_id"`
	AppTime    int64  `json:"app_time"`
	AppUser    string `json:"app_user"`
	Amount     int64  `json:"amount"`
	EmbedData  string `json:"embed_data"`
	Item       string `json:"item"`
	ZPTransID  int64  `json:"zp_trans_id"`
	ServerTime int64  `json:"server_time"`
	Channel    int    `json:"channel"`
}

// QueryResult 查询结果
type QueryResult struct {
	ReturnCode   int    `json:"return_code"`
	Message      string `json:"return_message"`
	IsPaid       bool   `json:"-"`
	IsProcessing bool   `json:"is_processing"`
	ZPTransID    int64  `json:"zp_trans_id"`
	Amount       int64  `json:"amount"`
	Raw          map[string]interface{}
}

// ValidateConfig 校验配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AppID) == "" {
		return fmt.Errorf("%w: app_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.Key1) == "" {
		return fmt.Errorf("%w: key1 is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.Key2) == "" {
		return fmt.Errorf("%w: key2 is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return fmt.Errorf("%w: gateway_url is required", ErrConfigInvalid)
	}
	return nil
}

// BuildAppTransID 生成网关交易号。网关要求 yymmdd 前缀按其服务器时区对齐。
func BuildAppTransID(now time.Time, orderNo string) string {
	return fmt.Sprintf("%s_%s", now.Format("060102"), orderNo)
}

// Sign 计算 HMAC-SHA256 签名（十六进制小写）
func Sign(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreatePayment 发起支付下单。
// 签名串固定为 appid|app_trans_id|appuser|amount|apptime|embed_data|item，使用 key1。
func CreatePayment(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.AppTransID == "" || input.Amount <= 0 {
		return nil, ErrConfigInvalid
	}
	if input.AppUser == "" {
		input.AppUser = "guest"
	}

	appTime := time.Now().UnixMilli()
	embedData := input.EmbedData
	if embedData == nil {
		embedData = map[string]interface{}{}
	}
	if cfg.RedirectURL != "" {
		embedData["redirecturl"] = cfg.RedirectURL
	}
	embedRaw, err := json.Marshal(embedData)
	if err != nil {
		return nil, ErrConfigInvalid
	}
	items := input.Items
	if items == nil {
		items = []map[string]interface{}{}
	}
	itemRaw, err := json.Marshal(items)
	if err != nil {
		return nil, ErrConfigInvalid
	}

	amount := strconv.FormatInt(input.Amount, 10)
	data := strings.Join([]string{
		cfg.AppID,
		input.AppTransID,
		input.AppUser,
		amount,
		strconv.FormatInt(appTime, 10),
		string(embedRaw),
		string(itemRaw),
	}, "|")

	params := map[string]string{
		"app_id":       cfg.AppID,
		"app_trans_id": input.AppTransID,
		"app_user":     input.AppUser,
		"app_time":     strconv.FormatInt(appTime, 10),
		"amount":       amount,
		"description":  input.Subject,
		"embed_data":   string(embedRaw),
		"item":         string(itemRaw),
		"callback_url": cfg.CallbackURL,
		"mac":          Sign(cfg.Key1, data),
	}

	endpoint := buildEndpoint(cfg.GatewayURL, cfg.CreatePath, defaultCreatePath)
	respBytes, err := postForm(ctx, endpoint, params)
	if err != nil {
		return nil, ErrRequestFailed
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)
	var resp struct {
		ReturnCode    int    `json:"return_code"`
		ReturnMessage string `json:"return_message"`
		OrderURL      string `json:"order_url"`
		ZPTransToken  string `json:"zp_trans_token"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, ErrResponseInvalid
	}
	if resp.ReturnCode != 1 {
		return nil, fmt.Errorf("%w: %s", ErrResponseInvalid, resp.ReturnMessage)
	}
	return &CreateResult{
		OrderURL:     strings.TrimSpace(resp.OrderURL),
		ZPTransToken: strings.TrimSpace(resp.ZPTransToken),
		Raw:          raw,
	}, nil
}

// VerifyCallback 验证回调签名。data 是原始 JSON 字符串，mac 必须等于
// HMAC-SHA256(key2, data)，比较使用常数时间。
func VerifyCallback(cfg *Config, data, mac string) error {
	if cfg == nil || strings.TrimSpace(cfg.Key2) == "" {
		return ErrConfigInvalid
	}
	if data == "" || mac == "" {
		return ErrSignatureInvalid
	}
	expected := Sign(cfg.Key2, data)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(mac)))) {
		return ErrSignatureInvalid
	}
	return nil
}

// ParseCallback 解析回调 data 字段
func ParseCallback(data string) (*CallbackData, error) {
	var cb CallbackData
	if err := json.Unmarshal([]byte(data), &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if cb.AppTransID == "" {
		return nil, fmt.Errorf("%w: missing app_trans_id", ErrResponseInvalid)
	}
	return &cb, nil
}

// QueryOrder 主动查询支付结果。签名串为 appid|app_trans_id|key1，使用 key1。
func QueryOrder(ctx context.Context, cfg *Config, appTransID string) (*QueryResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if appTransID == "" {
		return nil, ErrConfigInvalid
	}

	data := strings.Join([]string{cfg.AppID, appTransID, cfg.Key1}, "|")
	params := map[string]string{
		"app_id":       cfg.AppID,
		"app_trans_id": appTransID,
		"mac":          Sign(cfg.Key1, data),
	}

	endpoint := buildEndpoint(cfg.GatewayURL, cfg.QueryPath, defaultQueryPath)
	respBytes, err := postForm(ctx, endpoint, params)
	if err != nil {
		return nil, ErrRequestFailed
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)
	var resp struct {
		ReturnCode    int    `json:"return_code"`
		ReturnMessage string `json:"return_message"`
		IsProcessing  bool   `json:"is_processing"`
		ZPTransID     int64  `json:"zp_trans_id"`
		Amount        int64  `json:"amount"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, ErrResponseInvalid
	}
	return &QueryResult{
		ReturnCode:   resp.ReturnCode,
		Message:      resp.ReturnMessage,
		IsPaid:       resp.ReturnCode == 1 && !resp.IsProcessing,
		IsProcessing: resp.IsProcessing,
		ZPTransID:    resp.ZPTransID,
		Amount:       resp.Amount,
		Raw:          raw,
	}, nil
}

func buildEndpoint(gatewayURL, apiPath, fallback string) string {
	base := strings.TrimRight(strings.TrimSpace(gatewayURL), "/")
	path := strings.TrimSpace(apiPath)
	if path == "" {
		path = fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func postForm(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrRequestFailed
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
