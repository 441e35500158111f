package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/AliNMackie/blackcard-concierge-ai/models"
	"github.com/AliNMackie/blackcard-concierge-ai/types"
)

// requestTimeout keeps the soft-fail path responsive: a hung backend
// degrades to "no data yet" within seconds instead of wedging a refresh.
const requestTimeout = 10 * time.Second

// dataURLPrefix strips a data: URL header off captured media before
// transmission; the wire format is bare base64.
var dataURLPrefix = regexp.MustCompile(`^data:(image|video)/[\w.+-]+;base64,`)

// API issues domain requests against the resolved base URL, attaching the
// per-request credential. It holds no feed state; that belongs to Session.
type API struct {
	resolver Resolver
	creds    *AuthProvider
	http     *http.Client
}

func NewAPI(resolver Resolver, creds *AuthProvider) *API {
	return &API{
		resolver: resolver,
		creds:    creds,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// FetchEvents returns the feed, most recent first, as delivered by the
// server. HTTP 403 maps to ErrAuthorizationDenied; any other failure is
// returned as-is for the session to soft-fail on.
func (a *API) FetchEvents(ctx context.Context, limit int) ([]models.Event, error) {
	path := "/events"
	if limit > 0 {
		path = fmt.Sprintf("/events?limit=%d", limit)
	}
	var out []models.Event
	if err := a.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendChat delivers a chat turn for the subject.
func (a *API) SendChat(ctx context.Context, subjectID, message string) (types.AgentResponse, error) {
	var out types.AgentResponse
	err := a.post(ctx, "/events/chat", types.ChatEventRequest{SubjectID: subjectID, Message: message}, &out)
	return out, err
}

// AnalyzeVision submits captured media for analysis. Any data: URL prefix
// is stripped before transmission.
func (a *API) AnalyzeVision(ctx context.Context, mediaBase64 string, isVideo bool) (types.AgentResponse, error) {
	clean := dataURLPrefix.ReplaceAllString(mediaBase64, "")
	req := types.VisionEventRequest{
		DetectedEquipment: []string{},
		UserQuery:         "Identify gym equipment and suggest a workout",
	}
	if isVideo {
		req.UserQuery = "Check my form"
		req.VideoBase64 = clean
	} else {
		req.ImageBase64 = clean
	}
	var out types.AgentResponse
	err := a.post(ctx, "/events/vision", req, &out)
	return out, err
}

// TriggerIntervention fires the ghostwriter for a client.
func (a *API) TriggerIntervention(ctx context.Context, clientID string) (types.AgentResponse, error) {
	var out types.AgentResponse
	err := a.post(ctx, "/events/intervention/"+clientID, nil, &out)
	return out, err
}

// SendTrainerMessage delivers a trainer→client direct message. On a
// non-2xx response the server's detail text is surfaced verbatim.
func (a *API) SendTrainerMessage(ctx context.Context, clientID, message string, sendExternalChannel bool) error {
	body := types.TrainerMessageRequest{Message: message, SendExternalChannel: sendExternalChannel}
	return a.do(ctx, http.MethodPatch, "/users/clients/"+clientID+"/message", body, nil)
}

// ClientMessages fetches the message transcript for one client.
func (a *API) ClientMessages(ctx context.Context, clientID string, limit int) ([]models.Event, error) {
	var out []models.Event
	path := fmt.Sprintf("/users/clients/%s/messages?limit=%d", clientID, limit)
	if err := a.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleTravel flips the signed-in user's travel mode.
func (a *API) ToggleTravel(ctx context.Context) (bool, error) {
	var out struct {
		IsTraveling bool `json:"isTraveling"`
	}
	if err := a.post(ctx, "/users/me/toggle-travel", nil, &out); err != nil {
		return false, err
	}
	return out.IsTraveling, nil
}

// TravelStatus reports the signed-in user's travel mode.
func (a *API) TravelStatus(ctx context.Context) (bool, error) {
	var out struct {
		IsTraveling bool `json:"isTraveling"`
	}
	if err := a.get(ctx, "/users/me/travel-status", &out); err != nil {
		return false, err
	}
	return out.IsTraveling, nil
}

func (a *API) get(ctx context.Context, path string, out interface{}) error {
	return a.do(ctx, http.MethodGet, path, nil, out)
}

func (a *API) post(ctx context.Context, path string, body, out interface{}) error {
	return a.do(ctx, http.MethodPost, path, body, out)
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.resolver.Base()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	a.setAuth(req)

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrAuthorizationDenied
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", method, path, errorDetail(resp))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// setAuth attaches the freshly resolved credential. Both header schemes
// may be present at once for backwards compatibility.
func (a *API) setAuth(req *http.Request) {
	cred := a.creds.Credential(req.Context())
	if cred.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+cred.BearerToken)
	}
	if cred.APIKey != "" {
		req.Header.Set("X-Elite-Key", cred.APIKey)
	}
}

// errorDetail extracts the server's detail text, falling back to the raw
// body and then the status line.
func errorDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e types.ErrorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return resp.Status
}
