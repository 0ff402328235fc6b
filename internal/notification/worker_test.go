package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"equipment-tracker-backend/internal/ledger"
	"equipment-tracker-backend/internal/model"
)

// mockSender records pushes instead of talking to a push service.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(&model.Equipment{}, &model.PushSubscription{}))
	return testDB
}

func seedSubscribedEquipment(t *testing.T, db *gorm.DB, endpoint string) *model.Equipment {
	t.Helper()
	eq := model.Equipment{
		EquipmentCode: "PROJ-001",
		Name:          "4K Projector",
		Category:      "AV",
		Brand:         "Epson",
		Model:         "EB-L530U",
		Location:      "Lecture Hall B",
		Ledger:        ledger.New(1),
		Status:        model.StatusAvailable,
		Condition:     model.ConditionGood,
	}
	require.NoError(t, db.Create(&eq).Error)

	sub := model.PushSubscription{
		Endpoint:  endpoint,
		P256DH:    "test_p256dh",
		Auth:      "test_auth",
		Equipment: []*model.Equipment{&eq},
	}
	require.NoError(t, db.Create(&sub).Error)
	return &eq
}

func TestWorkerPoolSendsToSubscribers(t *testing.T) {
	db := newTestDB(t)
	eq := seedSubscribedEquipment(t, db, "https://example.com/push")

	wp := NewWorkerPool(1, db, &webpush.Options{}, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	var payloads []string
	wp.SetSender(&mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://example.com/push", sub.Endpoint)
			mu.Lock()
			payloads = append(payloads, string(payload))
			mu.Unlock()
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch(Job{Kind: KindAvailable, EquipmentID: eq.ID})
	wp.Dispatch(Job{Kind: KindOverdue, EquipmentID: eq.ID})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{
		"4K Projector (PROJ-001) is available again.",
		"An assignment of 4K Projector (PROJ-001) is overdue.",
	}, payloads)
}

func TestWorkerPoolDeletesExpiredSubscription(t *testing.T) {
	db := newTestDB(t)
	eq := seedSubscribedEquipment(t, db, "https://example.com/expired")

	wp := NewWorkerPool(1, db, &webpush.Options{}, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	wp.SetSender(&mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusGone,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch(Job{Kind: KindAvailable, EquipmentID: eq.ID})
	wg.Wait()

	// The delete happens after the send returns; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int64
		require.NoError(t, db.Model(&model.PushSubscription{}).
			Where("endpoint = ?", "https://example.com/expired").
			Count(&count).Error)
		if count == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expired subscription was not deleted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
