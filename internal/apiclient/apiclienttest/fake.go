// Package apiclienttest provides an in-memory stand-in for the remote endpoint,
// served over httptest, for tests across the module.
package apiclienttest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kruchat2026/devlog/internal/domain"
)

type Call struct {
	Action string
	Body   map[string]any
}

type Remote struct {
	URL string

	mu        sync.Mutex
	users     []*domain.User
	passwords map[string]string
	records   []*domain.Record
	nextID    int
	calls     []Call
	failures  map[string]string
	broken    map[string]bool
}

// NewRemote starts a fake endpoint that is closed with the test.
func NewRemote(t *testing.T) *Remote {
	t.Helper()
	r := &Remote{
		passwords: map[string]string{},
		failures:  map[string]string{},
		broken:    map[string]bool{},
	}
	srv := httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(srv.Close)
	r.URL = srv.URL
	return r
}

func (r *Remote) AddUser(u domain.User, password string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := u
	r.users = append(r.users, &user)
	r.passwords[strings.ToLower(u.Email)] = password
}

func (r *Remote) AddRecord(rec domain.Record) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := rec
	if record.RecordID == "" {
		r.nextID++
		record.RecordID = fmt.Sprintf("R%d", r.nextID)
	}
	r.records = append(r.records, &record)
	return record.RecordID
}

// Fail makes every following call of action answer ok:false with message.
func (r *Remote) Fail(action, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[action] = message
}

// Break makes action answer with an unparseable HTTP 500.
func (r *Remote) Break(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken[action] = true
}

func (r *Remote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Remote) Count(action string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Action == action {
			n++
		}
	}
	return n
}

func (r *Remote) Record(id string) *domain.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec := domain.FindRecord(r.records, id); rec != nil {
		cp := *rec
		return &cp
	}
	return nil
}

func (r *Remote) User(email string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.findUser(email); u != nil {
		cp := *u
		return &cp
	}
	return nil
}

func (r *Remote) findUser(email string) *domain.User {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (r *Remote) serve(w http.ResponseWriter, req *http.Request) {
	body := map[string]any{}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	action, _ := body["action"].(string)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Action: action, Body: body})

	if r.broken[action] {
		http.Error(w, "<html>Internal error</html>", http.StatusInternalServerError)
		return
	}
	if msg, ok := r.failures[action]; ok {
		writeResult(w, false, nil, msg)
		return
	}

	data, err := r.handle(action, body)
	if err != nil {
		writeResult(w, false, nil, err.Error())
		return
	}
	writeResult(w, true, data, "")
}

func writeResult(w http.ResponseWriter, ok bool, data any, msg string) {
	res := map[string]any{"ok": ok}
	if ok {
		res["data"] = data
	} else {
		res["error"] = map[string]string{"message": msg}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func str(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func (r *Remote) handle(action string, body map[string]any) (any, error) {
	email := str(body, "email")
	caller := r.findUser(email)

	switch action {
	case "getMe":
		if caller == nil {
			return nil, fmt.Errorf("user not found")
		}
		return caller, nil

	case "loginUser":
		if caller == nil || r.passwords[strings.ToLower(email)] != str(body, "password") {
			return nil, fmt.Errorf("invalid credentials")
		}
		return caller, nil

	case "registerUser":
		if caller != nil {
			return nil, fmt.Errorf("email already registered")
		}
		u := &domain.User{Email: email, Name: str(body, "name"), Role: domain.RoleTeacher, Status: domain.UserPending}
		r.users = append(r.users, u)
		r.passwords[strings.ToLower(email)] = str(body, "password")
		return u, nil
	}

	if caller == nil {
		return nil, fmt.Errorf("unauthorized")
	}

	switch action {
	case "listRecords":
		status := domain.RecordStatus(str(body, "status"))
		out := []*domain.Record{}
		for _, rec := range r.records {
			if !caller.IsAdmin() && !strings.EqualFold(rec.OwnerEmail, caller.Email) {
				continue
			}
			if status != "" && rec.Status != status {
				continue
			}
			out = append(out, rec)
		}
		return out, nil

	case "upsertRecord":
		raw, _ := json.Marshal(body["record"])
		incoming := domain.Record{}
		if err := json.Unmarshal(raw, &incoming); err != nil {
			return nil, err
		}
		if incoming.RecordID == "" {
			r.nextID++
			incoming.RecordID = fmt.Sprintf("R%d", r.nextID)
			incoming.OwnerEmail = caller.Email
			r.records = append(r.records, &incoming)
			return map[string]string{"recordId": incoming.RecordID}, nil
		}
		existing := domain.FindRecord(r.records, incoming.RecordID)
		if existing == nil {
			return nil, fmt.Errorf("record not found")
		}
		if !existing.EditableBy(caller.Email) {
			return nil, fmt.Errorf("record is locked")
		}
		incoming.OwnerEmail = existing.OwnerEmail
		if len(incoming.Attachments) == 0 {
			incoming.Attachments = existing.Attachments
		}
		*existing = incoming
		return map[string]string{"recordId": incoming.RecordID}, nil

	case "deleteRecord":
		id := str(body, "recordId")
		for i, rec := range r.records {
			if rec.RecordID == id {
				r.records = append(r.records[:i], r.records[i+1:]...)
				return nil, nil
			}
		}
		return nil, fmt.Errorf("record not found")

	case "uploadFile":
		rec := domain.FindRecord(r.records, str(body, "recordId"))
		if rec == nil {
			return nil, fmt.Errorf("record not found")
		}
		if _, err := base64.StdEncoding.DecodeString(str(body, "base64Data")); err != nil {
			return nil, fmt.Errorf("invalid file data")
		}
		att := domain.Attachment{
			FileName: str(body, "fileName"),
			FileURL:  "https://drive.example.com/" + rec.RecordID + "/" + str(body, "fileName"),
		}
		rec.Attachments = []domain.Attachment{att}
		return att, nil

	case "reviewRecord":
		if !caller.IsAdmin() {
			return nil, fmt.Errorf("forbidden")
		}
		rec := domain.FindRecord(r.records, str(body, "recordId"))
		if rec == nil {
			return nil, fmt.Errorf("record not found")
		}
		rec.Status = domain.RecordStatus(str(body, "reviewAction"))
		rec.ReviewComment = str(body, "comment")
		return nil, nil

	case "getUsers":
		if !caller.IsAdmin() {
			return nil, fmt.Errorf("forbidden")
		}
		return r.users, nil

	case "updateUser":
		target := r.findUser(str(body, "targetEmail"))
		if target == nil {
			return nil, fmt.Errorf("user not found")
		}
		updates, _ := body["updates"].(map[string]any)
		if role, ok := updates["role"].(string); ok {
			target.Role = domain.Role(role)
		}
		if status, ok := updates["status"].(string); ok {
			target.Status = domain.UserStatus(status)
		}
		return target, nil

	case "deleteUser":
		targetEmail := str(body, "targetEmail")
		for i, u := range r.users {
			if strings.EqualFold(u.Email, targetEmail) {
				r.users = append(r.users[:i], r.users[i+1:]...)
				return nil, nil
			}
		}
		return nil, fmt.Errorf("user not found")
	}

	return nil, fmt.Errorf("unknown action: %s", action)
}
