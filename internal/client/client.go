package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Mohzhal/absensi/internal/geo"
	"github.com/Mohzhal/absensi/internal/models"
)

// APIError is a structured rejection from the server: a response arrived
// and carried a business or validation message.
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Msg)
}

// ConnectivityError wraps a transport failure: the request never produced
// a server response. Distinct from APIError so callers can word the two
// differently.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "tidak dapat terhubung ke server: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ErrAwaitingVerification blocks an unverified employee account after a
// successful credential check. Until HR approves the registration the
// account cannot enter the attendance flow.
var ErrAwaitingVerification = errors.New("Akun Anda belum diverifikasi oleh HR/Admin. Silakan hubungi HR untuk konfirmasi.")

// Session carries the bearer credential and the logged-in user. It is
// populated by Login and passed explicitly to every screen-level caller.
type Session struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Client talks to the attendance backend.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Session returns the active session, or nil before login.
func (c *Client) Session() *Session { return c.session }

// Login authenticates with NIK and password and stores the session.
func (c *Client) Login(ctx context.Context, nik, password string) (*Session, error) {
	body, _ := json.Marshal(models.LoginRequest{NIK: nik, Password: password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var session Session
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	if session.User != nil && session.User.Role == models.RoleKaryawan && session.User.IsVerified == 0 {
		return nil, ErrAwaitingVerification
	}
	c.session = &session
	return &session, nil
}

// GetCompany fetches the registered location and radius for a company.
func (c *Client) GetCompany(ctx context.Context, id int) (*models.Company, error) {
	req, err := c.newAuthedRequest(ctx, http.MethodGet, "/api/companies/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	var company models.Company
	if err := c.do(req, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// TodayAttendance fetches the current user's records for today.
func (c *Client) TodayAttendance(ctx context.Context) ([]models.Attendance, error) {
	if c.session == nil || c.session.User == nil {
		return nil, fmt.Errorf("belum login")
	}
	path := "/api/attendance/history/today/" + strconv.Itoa(c.session.User.ID)
	req, err := c.newAuthedRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var records []models.Attendance
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListAttendance fetches the records the server scopes to this account:
// the user's own for employees, everyone's for HR and super-admin.
func (c *Client) ListAttendance(ctx context.Context, filter string) ([]models.Attendance, error) {
	path := "/api/attendance"
	if filter != "" {
		path += "?filter=" + filter
	}
	req, err := c.newAuthedRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var records []models.Attendance
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// History fetches the current user's full attendance history.
func (c *Client) History(ctx context.Context) ([]models.Attendance, error) {
	if c.session == nil || c.session.User == nil {
		return nil, fmt.Errorf("belum login")
	}
	path := "/api/attendance/history/" + strconv.Itoa(c.session.User.ID)
	req, err := c.newAuthedRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var records []models.Attendance
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SubmitAttendance sends one multipart request carrying the photo, the
// attendance type, and the captured coordinate. The server adjudicates
// distance and validity; the client never pre-rejects on distance.
func (c *Client) SubmitAttendance(ctx context.Context, attType models.AttendanceType, photo []byte, loc geo.Coordinate) (*models.AttendanceResult, error) {
	if len(photo) == 0 {
		return nil, fmt.Errorf("foto belum diambil")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "attendance.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(photo); err != nil {
		return nil, err
	}
	_ = writer.WriteField("type", string(attType))
	_ = writer.WriteField("lat_backup", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	_ = writer.WriteField("lon_backup", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newAuthedRequest(ctx, http.MethodPost, "/api/attendance", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result models.AttendanceResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) newAuthedRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	return req, nil
}

// do executes the request, decoding the body into out on 2xx and into an
// APIError otherwise. Transport failures come back as ConnectivityError.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &ConnectivityError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectivityError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Msg: FriendlyMessage(serverMessage(data))}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unexpected response body: %w", err)
		}
	}
	return nil
}

// serverMessage pulls the error text out of a rejection body. The server
// writes the same text under both "msg" and "error".
func serverMessage(data []byte) string {
	var body struct {
		Msg   string `json:"msg"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Msg != "" {
			return body.Msg
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return "terjadi kesalahan pada server"
}

// FriendlyMessage maps a small set of recognized server phrases to more
// helpful wording and passes everything else through verbatim.
func FriendlyMessage(msg string) string {
	switch strings.ToLower(msg) {
	case "user tidak ditemukan":
		return "NIK tidak terdaftar. Silakan hubungi HR untuk pendaftaran."
	case "password salah":
		return "Password yang Anda masukkan salah. Coba lagi."
	default:
		return msg
	}
}
