package db

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fakeSweeper struct {
	refreshCalls atomic.Int32
	cleanupCalls atomic.Int32
	refreshErr   error
	cleanupErr   error
}

func (f *fakeSweeper) UpdateAllStatuses(ctx context.Context) (int, error) {
	f.refreshCalls.Add(1)
	return 2, f.refreshErr
}

func (f *fakeSweeper) CleanupExpiredMedicines(ctx context.Context) (int64, error) {
	f.cleanupCalls.Add(1)
	return 3, f.cleanupErr
}

// syncBuffer guards the log buffer shared with the sweeper goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func bufferLogger(level zapcore.Level) (*zap.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(buf),
		level,
	)
	return zap.New(core), buf
}

func TestStartRetentionSweeper_Success(t *testing.T) {
	sweeper := &fakeSweeper{}
	logger, buf := bufferLogger(zapcore.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartRetentionSweeper(ctx, sweeper, 10*time.Millisecond, logger)

	time.Sleep(200 * time.Millisecond)
	cancel()

	if sweeper.refreshCalls.Load() == 0 || sweeper.cleanupCalls.Load() == 0 {
		t.Fatalf("expected both sweeps to run, got refresh=%d cleanup=%d",
			sweeper.refreshCalls.Load(), sweeper.cleanupCalls.Load())
	}
	if out := buf.String(); !strings.Contains(out, "cleaned expired medicines") {
		t.Errorf("expected cleanup log, got:\n%s", out)
	}
}

func TestStartRetentionSweeper_RefreshErrorSkipsCleanup(t *testing.T) {
	sweeper := &fakeSweeper{refreshErr: fmt.Errorf("db fail")}
	logger, buf := bufferLogger(zapcore.ErrorLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartRetentionSweeper(ctx, sweeper, 10*time.Millisecond, logger)

	time.Sleep(200 * time.Millisecond)
	cancel()

	if out := buf.String(); !strings.Contains(out, "failed to refresh medicine statuses") {
		t.Errorf("expected error log, got:\n%s", out)
	}
	if n := sweeper.cleanupCalls.Load(); n != 0 {
		t.Errorf("cleanup ran %d times after refresh failures", n)
	}
}

func TestStartRetentionSweeper_CleanupErrorLogged(t *testing.T) {
	sweeper := &fakeSweeper{cleanupErr: fmt.Errorf("db fail")}
	logger, buf := bufferLogger(zapcore.ErrorLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartRetentionSweeper(ctx, sweeper, 10*time.Millisecond, logger)

	time.Sleep(200 * time.Millisecond)
	cancel()

	if out := buf.String(); !strings.Contains(out, "failed to clean expired medicines") {
		t.Errorf("expected error log, got:\n%s", out)
	}
}

func TestStartRetentionSweeper_CancelBeforeTicker(t *testing.T) {
	sweeper := &fakeSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	StartRetentionSweeper(ctx, sweeper, 100*time.Millisecond, zap.NewNop())
	cancel()

	time.Sleep(50 * time.Millisecond)

	if n := sweeper.refreshCalls.Load(); n != 0 {
		t.Errorf("unexpected sweep calls: %d", n)
	}
}
