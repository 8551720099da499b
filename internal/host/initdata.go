package host

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
)

var (
	ErrInvalidInitData = errors.New("invalid init data")
	ErrSignature       = errors.New("init data signature mismatch")
	ErrExpired         = errors.New("init data expired")
)

// InitData is the parsed form of the Telegram WebApp init data string.
type InitData struct {
	Raw        string
	QueryID    string
	StartParam string
	AuthDate   time.Time
	Hash       string
	User       User
}

// ParseInitData decodes the URL-encoded init data without checking its
// signature.
func ParseInitData(raw string) (InitData, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitData{}, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	data := InitData{
		Raw:        raw,
		QueryID:    values.Get("query_id"),
		StartParam: values.Get("start_param"),
		Hash:       values.Get("hash"),
	}

	if ts := values.Get("auth_date"); ts != "" {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return InitData{}, fmt.Errorf("%w: auth_date: %v", ErrInvalidInitData, err)
		}
		data.AuthDate = time.Unix(sec, 0)
	}

	if rawUser := values.Get("user"); rawUser != "" {
		var u struct {
			models.User
			PhotoURL string `json:"photo_url"`
		}
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			return InitData{}, fmt.Errorf("%w: user: %v", ErrInvalidInitData, err)
		}
		data.User = User{
			ID:           u.ID,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Username:     u.Username,
			LanguageCode: u.LanguageCode,
			IsPremium:    u.IsPremium,
			PhotoURL:     u.PhotoURL,
		}
	}

	return data, nil
}

// ValidateInitData checks the HMAC signature of raw against botToken and,
// when maxAge is positive, rejects data older than maxAge.
func ValidateInitData(raw, botToken string, maxAge time.Duration, now time.Time) (InitData, error) {
	data, err := ParseInitData(raw)
	if err != nil {
		return InitData{}, err
	}
	if data.Hash == "" {
		return InitData{}, fmt.Errorf("%w: missing hash", ErrInvalidInitData)
	}

	values, _ := url.ParseQuery(raw)
	expected := Sign(values, botToken)
	if !hmac.Equal([]byte(expected), []byte(data.Hash)) {
		return InitData{}, ErrSignature
	}

	if maxAge > 0 && now.Sub(data.AuthDate) > maxAge {
		return InitData{}, ErrExpired
	}
	return data, nil
}

// Sign computes the init data hash for values (the "hash" key is ignored).
// Secret = HMAC-SHA256("WebAppData", bot_token),
// hash = HMAC-SHA256(data_check_string, secret).
func Sign(values url.Values, botToken string) string {
	var fields []string
	for key := range values {
		if key == "hash" {
			continue
		}
		fields = append(fields, key+"="+values.Get(key))
	}
	sort.Strings(fields)
	checkString := strings.Join(fields, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	h := hmac.New(sha256.New, secret.Sum(nil))
	h.Write([]byte(checkString))
	return hex.EncodeToString(h.Sum(nil))
}

// FromInitData builds a bridge from raw init data. Empty or malformed data
// yields an unavailable bridge.
func FromInitData(raw string, haptic HapticFunc) Bridge {
	if strings.TrimSpace(raw) == "" {
		return Unavailable()
	}
	data, err := ParseInitData(raw)
	if err != nil {
		return Unavailable()
	}
	return Available(data.User, raw, haptic)
}
