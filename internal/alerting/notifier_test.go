package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("路径应包含 sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	note := Notification{
		Wallet:     "0x00000000219ab540356cBB839Cbe05303d7705Fa",
		PrevScore:  412.5,
		NewScore:   287.31,
		ScoreFloor: 300,
		RunID:      "run-1",
		Channels:   []string{"telegram"},
	}

	if err := notifier.Notify(context.Background(), note); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	if !strings.Contains(received["text"], "287.31") {
		t.Fatalf("text 应包含新分数, 实际 %q", received["text"])
	}
	if !strings.Contains(received["text"], note.Wallet) {
		t.Fatalf("text 应包含钱包地址, 实际 %q", received["text"])
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	note := Notification{Wallet: "wallet-1", PrevScore: 500, NewScore: 120, ScoreFloor: 300}

	if err := notifier.Notify(context.Background(), note); err == nil {
		t.Fatal("ok=false 应报错")
	}
}

func TestRenderMessageSections(t *testing.T) {
	msg := renderMessage(Notification{
		Wallet:     "wallet-1",
		PrevScore:  640,
		NewScore:   150,
		ScoreFloor: 300,
		RunID:      "run-9",
		Channels:   []string{"telegram", "log"},
		Note:       "manual review suggested",
	})

	for _, want := range []string{
		"[Wallet Credit Alert]",
		"wallet-1",
		"640.00 -> 150.00",
		"Floor: 300.00",
		"run-9",
		"telegram,log",
		"manual review suggested",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("消息缺少 %q:\n%s", want, msg)
		}
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
