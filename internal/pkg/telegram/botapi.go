package telegram

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// BotAPI is a thin Telegram Bot API client for background jobs that run
// outside the telebot update loop.
type BotAPI struct {
	token  string
	client *resty.Client
}

// NewBotAPI creates a new direct Telegram Bot API client.
func NewBotAPI(token string) *BotAPI {
	return NewBotAPIWithURL(token, "https://api.telegram.org")
}

// NewBotAPIWithURL points the client at a custom Bot API server.
func NewBotAPIWithURL(token, baseURL string) *BotAPI {
	return &BotAPI{
		token:  token,
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/") + "/bot" + token).
			SetTimeout(30 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(1 * time.Second).
			SetRetryMaxWaitTime(5 * time.Second),
	}
}

// Call makes a raw API call to the Telegram Bot API.
func (b *BotAPI) Call(method string, params map[string]interface{}) (string, error) {
	resp, err := b.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		Post("/" + method)
	if err != nil {
		return "", fmt.Errorf("telegram API call %s failed: %w", method, err)
	}
	return resp.String(), nil
}

// SendMessage sends an HTML text message.
func (b *BotAPI) SendMessage(chatID string, text string, replyMarkup interface{}) (string, error) {
	params := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if replyMarkup != nil {
		params["reply_markup"] = replyMarkup
	}
	return b.Call("sendMessage", params)
}

// SendDocument sends an in-memory file.
func (b *BotAPI) SendDocument(chatID string, fileData []byte, filename, caption string) (string, error) {
	resp, err := b.client.R().
		SetFileReader("document", filename, strings.NewReader(string(fileData))).
		SetFormData(map[string]string{
			"chat_id":    chatID,
			"caption":    caption,
			"parse_mode": "HTML",
		}).
		Post("/sendDocument")
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

// Response is the envelope every Bot API method returns.
type Response struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
	Result      json.RawMessage `json:"result"`
}

// ParseResponse turns a raw reply into an error when ok is false.
func ParseResponse(raw string) (*Response, error) {
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("invalid telegram response: %w", err)
	}
	if !resp.OK {
		if resp.Description == "" {
			resp.Description = "telegram api returned ok=false"
		}
		return &resp, fmt.Errorf("telegram error %d: %s", resp.ErrorCode, resp.Description)
	}
	return &resp, nil
}

// IsBlockedByUser reports errors that mean the chat will never accept
// messages again, so retrying is pointless.
func IsBlockedByUser(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bot was blocked by the user") ||
		strings.Contains(msg, "user is deactivated") ||
		strings.Contains(msg, "chat not found")
}

var telegramNets = mustParseCIDRs("149.154.160.0/20", "91.108.4.0/22")

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		out = append(out, n)
	}
	return out
}

// CheckTelegramIP verifies the request originates from Telegram's webhook
// ranges 149.154.160.0/20 and 91.108.4.0/22.
func CheckTelegramIP(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	for _, n := range telegramNets {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}
