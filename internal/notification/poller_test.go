package notification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog-management/internal/notification"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type stubSource struct {
	messages []*notification.Message
	fetchErr error
	calls    []int64
}

func (s *stubSource) FetchSince(_ context.Context, sinceID int64, limit int) ([]*notification.Message, error) {
	s.calls = append(s.calls, sinceID)
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []*notification.Message
	for _, msg := range s.messages {
		if msg.ID > sinceID {
			out = append(out, msg)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ = Describe("Poller", func() {
	var (
		source    *stubSource
		delivered [][]*notification.Message
		deliverFn notification.DeliverFunc
		logger    *slog.Logger
	)

	newPoller := func() *notification.Poller {
		return notification.NewPoller(source, deliverFn, time.Minute, 100, logger)
	}

	BeforeEach(func() {
		source = &stubSource{messages: []*notification.Message{
			{ID: 1, CompanyID: 1, Subject: "a"},
			{ID: 2, CompanyID: 1, Subject: "b"},
			{ID: 3, CompanyID: 2, Subject: "c"},
		}}
		delivered = nil
		deliverFn = func(_ context.Context, batch []*notification.Message) error {
			delivered = append(delivered, batch)
			return nil
		}
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	It("advances the cursor past a delivered batch", func() {
		poller := newPoller()

		poller.Tick(context.Background())

		Expect(delivered).To(HaveLen(1))
		Expect(delivered[0]).To(HaveLen(3))
		Expect(poller.LastSeen()).To(Equal(int64(3)))

		// next tick starts from the new cursor and finds nothing
		poller.Tick(context.Background())
		Expect(delivered).To(HaveLen(1))
		Expect(source.calls).To(Equal([]int64{0, 3}))
	})

	It("keeps the cursor on fetch failure", func() {
		source.fetchErr = errors.New("db gone")
		poller := newPoller()

		poller.Tick(context.Background())

		Expect(delivered).To(BeEmpty())
		Expect(poller.LastSeen()).To(BeZero())
	})

	It("keeps the cursor on delivery failure so the batch is retried", func() {
		attempts := 0
		deliverFn = func(_ context.Context, batch []*notification.Message) error {
			attempts++
			if attempts == 1 {
				return errors.New("relay down")
			}
			delivered = append(delivered, batch)
			return nil
		}
		poller := newPoller()

		poller.Tick(context.Background())
		Expect(poller.LastSeen()).To(BeZero())

		poller.Tick(context.Background())
		Expect(poller.LastSeen()).To(Equal(int64(3)))
		Expect(delivered).To(HaveLen(1))
		Expect(source.calls).To(Equal([]int64{0, 0}))
	})

	It("stops when the context is cancelled", func() {
		poller := notification.NewPoller(source, deliverFn, 5*time.Millisecond, 100, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- poller.Run(ctx)
		}()

		Eventually(func() int64 { return poller.LastSeen() }).Should(Equal(int64(3)))
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})
})
