package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bigode/bigode-booking/internal/domain"
)

func queuePath(barberID, suffix string) string {
	return fmt.Sprintf("/barbers/%s/queue%s", url.PathEscape(barberID), suffix)
}

func (c *Client) GetQueueStatus(ctx context.Context, barberID string) (domain.QueueStatus, error) {
	var status domain.QueueStatus
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: queuePath(barberID, "")}, &status); err != nil {
		return domain.QueueStatus{}, fmt.Errorf("get queue status: %w", err)
	}
	return status, nil
}

func (c *Client) JoinQueue(ctx context.Context, barberID string) (domain.QueueTicket, error) {
	var ticket domain.QueueTicket
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: queuePath(barberID, "/join")}, &ticket); err != nil {
		return domain.QueueTicket{}, fmt.Errorf("join queue: %w", err)
	}
	return ticket, nil
}

func (c *Client) PollQueue(ctx context.Context, barberID string) (domain.QueueTicket, error) {
	var ticket domain.QueueTicket
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: queuePath(barberID, "/position")}, &ticket); err != nil {
		return domain.QueueTicket{}, fmt.Errorf("poll queue: %w", err)
	}
	return ticket, nil
}

func (c *Client) LeaveQueue(ctx context.Context, barberID string) error {
	if err := c.doJSON(ctx, request{method: http.MethodDelete, path: queuePath(barberID, "/leave")}, nil); err != nil {
		return fmt.Errorf("leave queue: %w", err)
	}
	return nil
}

// SetQueueOpen opens or closes a barber's queue for new walk-ins. Admin only.
func (c *Client) SetQueueOpen(ctx context.Context, barberID string, open bool) (domain.QueueStatus, error) {
	suffix := "/close"
	if open {
		suffix = "/open"
	}
	var status domain.QueueStatus
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: queuePath(barberID, suffix)}, &status); err != nil {
		return domain.QueueStatus{}, fmt.Errorf("set queue open: %w", err)
	}
	return status, nil
}

// CallNext serves the head of a barber's queue. Admin only.
func (c *Client) CallNext(ctx context.Context, barberID string) (domain.QueueStatus, error) {
	var status domain.QueueStatus
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: queuePath(barberID, "/next")}, &status); err != nil {
		return domain.QueueStatus{}, fmt.Errorf("call next in queue: %w", err)
	}
	return status, nil
}
