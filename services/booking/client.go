package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"staybot/utils"
)

const (
	roomsService   = "rooms"
	bookingService = "booking"
)

// HotelAPI is the pair of downstream hotel endpoints the assistant can call.
type HotelAPI interface {
	GetRoomOptions(ctx context.Context) (json.RawMessage, error)
	BookRoom(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

// Client calls the rooms and booking REST endpoints. Calls are single-attempt.
type Client struct {
	httpClient *resty.Client
	roomsURL   string
	bookingURL string
}

var _ HotelAPI = (*Client)(nil)

// NewClient returns a client for the given rooms and booking endpoints.
func NewClient(roomsURL, bookingURL string) *Client {
	return &Client{
		httpClient: resty.New().
			SetHeader("Accept", "application/json").
			SetRetryCount(0),
		roomsURL:   roomsURL,
		bookingURL: bookingURL,
	}
}

// WithTimeout bounds every downstream call. Zero leaves calls unbounded.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.httpClient.SetTimeout(d)
	return c
}

// GetRoomOptions returns the rooms payload verbatim (compacted).
func (c *Client) GetRoomOptions(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(c.roomsURL)
	return passthrough(roomsService, resp, err)
}

// BookRoom posts the model-supplied arguments unchanged and returns the payload.
func (c *Client) BookRoom(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	if !json.Valid(args) {
		return nil, errors.New("book room: arguments are not valid JSON")
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(args)).
		Post(c.bookingURL)
	return passthrough(bookingService, resp, err)
}

func passthrough(service string, resp *resty.Response, err error) (json.RawMessage, error) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s request: %w", service, err)
		}
		return nil, &utils.DownstreamUnavailableError{Service: service, Err: err}
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return nil, utils.NewDownstreamResponseError(service, resp.StatusCode(), decodePayload(body))
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, fmt.Errorf("%s returned a non-JSON payload: %w", service, err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

func decodePayload(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}
