package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"reservio/pkg/model"
)

// BookingClient is a typed client for the bookings API.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// ListQuery mirrors the query parameters of GET /api/v1/bookings.
type ListQuery struct {
	UserID     string
	ResourceID string
	Status     string
	FromTime   *time.Time
	ToTime     *time.Time
	Limit      int
	From       int64
}

func (c *BookingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", body)
}

func (c *BookingClient) List(q ListQuery) (*Response, error) {
	values := url.Values{}
	if q.UserID != "" {
		values.Set("user_id", q.UserID)
	}
	if q.ResourceID != "" {
		values.Set("resource_id", q.ResourceID)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.FromTime != nil {
		values.Set("from_time", q.FromTime.Format(time.RFC3339))
	}
	if q.ToTime != nil {
		values.Set("to_time", q.ToTime.Format(time.RFC3339))
	}
	if q.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", q.Limit))
	}
	if q.From > 0 {
		values.Set("from", fmt.Sprintf("%d", q.From))
	}

	path := "/api/v1/bookings"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return c.httpClient.GET(path)
}

func (c *BookingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/id/" + url.PathEscape(id))
}

func (c *BookingClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PUT("/api/v1/bookings/id/"+url.PathEscape(id), body)
}

func (c *BookingClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/bookings/id/" + url.PathEscape(id))
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking wrapper: %s: %w", resp.ToString(), err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Data, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking: %s: %w", resp.ToString(), err)
	}

	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, int64, error) {
	var wrapper struct {
		Data  json.RawMessage `json:"data"`
		Count int64           `json:"count"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, 0, fmt.Errorf("could not decode paginated response: %s: %w", resp.ToString(), err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, 0, fmt.Errorf("could not decode bookings: %s: %w", resp.ToString(), err)
	}

	return bookings, wrapper.Count, nil
}
