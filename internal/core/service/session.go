// Package service provides the session service for bil.
//
// SessionService mediates between the client and the remote bil API,
// holding the active project/pay group context used to build nested
// resource paths.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/yndnr/bil-go/internal/core/domain"
	"github.com/yndnr/bil-go/internal/telemetry/logger"
)

// UploadField is the multipart field name of attachment uploads.
const UploadField = "file"

// Transport defines the HTTP operations the session service depends on.
type Transport interface {
	// Fetch performs a GET and decodes the JSON body into out.
	Fetch(ctx context.Context, path string, out any) error

	// Send performs a JSON POST or PUT, decoding the response into out
	// when out is non-nil.
	Send(ctx context.Context, method, path string, body, out any) error

	// Remove performs a DELETE without inspecting the response status.
	Remove(ctx context.Context, path string) error

	// Upload sends r as a multipart part named field.
	Upload(ctx context.Context, path, field, filename string, r io.Reader) error

	// Download performs a GET and copies the raw body into w.
	Download(ctx context.Context, path string, w io.Writer) (int64, error)
}

// OperationRecorder counts session operations by result.
type OperationRecorder interface {
	RecordOperation(operation, result string)
}

// Operation results passed to the OperationRecorder.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultReadOnly = "read_only"
)

// ActiveContext is a snapshot of the session context.
type ActiveContext struct {
	ProjectID    int64  `json:"project_id" yaml:"project_id"`
	PayGroupID   int64  `json:"paygroup_id" yaml:"paygroup_id"`
	ReadOnly     bool   `json:"read_only" yaml:"read_only"`
	HistoryState string `json:"history_state,omitempty" yaml:"history_state,omitempty"`
}

// Option configures a SessionService.
type Option func(*SessionService)

// WithLogger sets the logger used for context change traces.
func WithLogger(l logger.Logger) Option {
	return func(s *SessionService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the recorder notified after every operation.
func WithRecorder(r OperationRecorder) Option {
	return func(s *SessionService) {
		s.recorder = r
	}
}

// SessionService is the client-side data-access layer for projects,
// pay groups and payments.
//
// Mutating operations fail with domain.ErrReadOnly while a historical
// snapshot is active, and operations scoped to a project or pay group
// fail with domain.ErrNoActiveProject / domain.ErrNoActiveGroup when that
// context is unset. In both cases no request is sent.
//
// Creates, updates and uploads that get a non-2xx response return the
// transport's error (a *connection.StatusError over HTTP). Deletes return
// nil once the request completes, whatever the status.
//
// The mutex only protects the context fields. Concurrent calls are not
// sequenced; the last context writer wins.
type SessionService struct {
	transport Transport
	logger    logger.Logger
	recorder  OperationRecorder

	mu           sync.RWMutex
	projectID    int64
	payGroupID   int64
	readOnly     bool
	historyState string
}

// NewSessionService creates a new SessionService.
func NewSessionService(transport Transport, opts ...Option) *SessionService {
	s := &SessionService{
		transport: transport,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// Context
// ============================================================================

// Context returns a snapshot of the active context.
func (s *SessionService) Context() ActiveContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ActiveContext{
		ProjectID:    s.projectID,
		PayGroupID:   s.payGroupID,
		ReadOnly:     s.readOnly,
		HistoryState: s.historyState,
	}
}

// IsReadOnly reports whether a historical snapshot is active.
func (s *SessionService) IsReadOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readOnly
}

// SetActiveProject selects a project without fetching it.
// Changing the project clears the active pay group and leaves read-only mode,
// since a history token belongs to the project it was fetched for.
func (s *SessionService) SetActiveProject(id int64) {
	s.mu.Lock()
	if s.projectID != id {
		s.payGroupID = 0
		s.readOnly = false
		s.historyState = ""
	}
	s.projectID = id
	s.mu.Unlock()

	s.logger.Debug("active project set", "project_id", id)
}

// SetActiveGroup selects the pay group used by payment operations.
// No request is sent.
func (s *SessionService) SetActiveGroup(id int64) {
	s.mu.Lock()
	s.payGroupID = id
	s.mu.Unlock()

	s.logger.Debug("active pay group set", "paygroup_id", id)
}

// Reset clears the active context and leaves read-only mode.
func (s *SessionService) Reset() {
	s.mu.Lock()
	s.projectID = 0
	s.payGroupID = 0
	s.readOnly = false
	s.historyState = ""
	s.mu.Unlock()

	s.logger.Debug("session context reset")
}

// ============================================================================
// Projects
// ============================================================================

// ListProjects returns the project summaries in server order.
func (s *SessionService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := s.transport.Fetch(ctx, "/projects", &projects)
	s.record("list_projects", err)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetProjectDetails fetches the full project graph. A non-empty historyState
// reads that snapshot and switches the session to read-only; an empty one
// reads the live project and leaves read-only mode.
//
// On success the project becomes the active project and every payment's
// Paid and Owed are derived from its persisted amounts.
func (s *SessionService) GetProjectDetails(ctx context.Context, id int64, historyState string) (*domain.Project, error) {
	path := projectPath(id)
	if historyState != "" {
		path += "/history/" + url.PathEscape(historyState)
	}

	var project domain.Project
	err := s.transport.Fetch(ctx, path, &project)
	s.record("get_project", err)
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	project.Recompute()
	if historyState != "" && project.HistoryState == "" {
		project.HistoryState = historyState
	}

	s.mu.Lock()
	if s.projectID != id {
		s.payGroupID = 0
	}
	s.projectID = id
	s.readOnly = historyState != ""
	s.historyState = historyState
	s.mu.Unlock()

	s.logger.Debug("active project fetched", "project_id", id, "read_only", historyState != "")
	return &project, nil
}

// GetProjectHistory returns the snapshot tokens available for a project.
func (s *SessionService) GetProjectHistory(ctx context.Context, id int64) ([]string, error) {
	var states []string
	err := s.transport.Fetch(ctx, projectPath(id)+"/history", &states)
	s.record("get_history", err)
	if err != nil {
		return nil, fmt.Errorf("get project %d history: %w", id, err)
	}
	return states, nil
}

// AddProject creates a project and returns its id.
func (s *SessionService) AddProject(ctx context.Context, name string) (int64, error) {
	const op = "add_project"
	if _, err := s.writable(op); err != nil {
		return 0, err
	}

	var created createdResponse
	err := s.transport.Send(ctx, http.MethodPost, "/projects", domain.ProjectInput{Name: name}, &created)
	s.record(op, err)
	if err != nil {
		return 0, fmt.Errorf("add project: %w", err)
	}
	return created.ID, nil
}

// UpdateProject replaces the project details.
func (s *SessionService) UpdateProject(ctx context.Context, id int64, details domain.ProjectInput) error {
	const op = "update_project"
	if _, err := s.writable(op); err != nil {
		return err
	}

	err := s.transport.Send(ctx, http.MethodPut, projectPath(id), details, nil)
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("update project %d: %w", id, err)
	}
	return nil
}

// DeleteProject removes a project. The server cascades to its pay groups
// and payments.
func (s *SessionService) DeleteProject(ctx context.Context, id int64) error {
	const op = "delete_project"
	if _, err := s.writable(op); err != nil {
		return err
	}

	err := s.transport.Remove(ctx, projectPath(id))
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return nil
}

// ============================================================================
// Pay groups
// ============================================================================

// AddGroup creates a pay group under the active project and returns its id.
// project is sent in the body as given.
func (s *SessionService) AddGroup(ctx context.Context, project int64, name string) (int64, error) {
	const op = "add_group"
	ac, err := s.writable(op)
	if err != nil {
		return 0, err
	}
	if err := s.require(op, ac, false); err != nil {
		return 0, err
	}

	var created createdResponse
	body := domain.PayGroupRequest{Project: project, Name: name}
	err = s.transport.Send(ctx, http.MethodPost, projectPath(ac.ProjectID)+"/paygroups", body, &created)
	s.record(op, err)
	if err != nil {
		return 0, fmt.Errorf("add pay group: %w", err)
	}
	return created.ID, nil
}

// UpdateGroup replaces the details of a pay group in the active project.
func (s *SessionService) UpdateGroup(ctx context.Context, id int64, details domain.PayGroupInput) error {
	const op = "update_group"
	ac, err := s.writable(op)
	if err != nil {
		return err
	}
	if err := s.require(op, ac, false); err != nil {
		return err
	}

	err = s.transport.Send(ctx, http.MethodPut, groupPath(ac.ProjectID, id), details, nil)
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("update pay group %d: %w", id, err)
	}
	return nil
}

// DeleteGroup removes a pay group from the active project.
func (s *SessionService) DeleteGroup(ctx context.Context, id int64) error {
	const op = "delete_group"
	ac, err := s.writable(op)
	if err != nil {
		return err
	}
	if err := s.require(op, ac, false); err != nil {
		return err
	}

	err = s.transport.Remove(ctx, groupPath(ac.ProjectID, id))
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("delete pay group %d: %w", id, err)
	}
	return nil
}

// ============================================================================
// Payments
// ============================================================================

// AddPayment creates a payment in the active pay group and returns its id.
// Paid and Owed are encoded into asset and liability.
func (s *SessionService) AddPayment(ctx context.Context, payment domain.PaymentInput) (int64, error) {
	const op = "add_payment"
	ac, err := s.writable(op)
	if err != nil {
		return 0, err
	}
	if err := s.require(op, ac, true); err != nil {
		return 0, err
	}

	body, err := domain.NewPaymentRequest(payment)
	if err != nil {
		s.record(op, err)
		return 0, err
	}

	var created createdResponse
	err = s.transport.Send(ctx, http.MethodPost, paymentsPath(ac.ProjectID, ac.PayGroupID), body, &created)
	s.record(op, err)
	if err != nil {
		return 0, fmt.Errorf("add payment: %w", err)
	}
	return created.ID, nil
}

// UpdatePayment replaces a payment in the active pay group, encoding its
// amounts the same way as AddPayment.
func (s *SessionService) UpdatePayment(ctx context.Context, id int64, payment domain.PaymentInput) error {
	const op = "update_payment"
	ac, err := s.writable(op)
	if err != nil {
		return err
	}
	if err := s.require(op, ac, true); err != nil {
		return err
	}

	body, err := domain.NewPaymentRequest(payment)
	if err != nil {
		s.record(op, err)
		return err
	}

	err = s.transport.Send(ctx, http.MethodPut, paymentPath(ac.ProjectID, ac.PayGroupID, id), body, nil)
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("update payment %d: %w", id, err)
	}
	return nil
}

// DeletePay removes a payment from the active pay group.
func (s *SessionService) DeletePay(ctx context.Context, id int64) error {
	const op = "delete_payment"
	ac, err := s.writable(op)
	if err != nil {
		return err
	}
	if err := s.require(op, ac, true); err != nil {
		return err
	}

	err = s.transport.Remove(ctx, paymentPath(ac.ProjectID, ac.PayGroupID, id))
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	return nil
}

// UploadFile attaches a file to a payment in the active pay group.
func (s *SessionService) UploadFile(ctx context.Context, id int64, filename string, r io.Reader) error {
	const op = "upload_file"
	ac, err := s.writable(op)
	if err != nil {
		return err
	}
	if err := s.require(op, ac, true); err != nil {
		return err
	}

	err = s.transport.Upload(ctx, filesPath(ac.ProjectID, ac.PayGroupID, id), UploadField, filename, r)
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("upload file for payment %d: %w", id, err)
	}
	return nil
}

// DownloadFile writes the attachment of a payment in the active pay group
// to w and returns the number of bytes written. It is a read and works
// while viewing history.
func (s *SessionService) DownloadFile(ctx context.Context, id int64, w io.Writer) (int64, error) {
	const op = "download_file"
	ac := s.Context()
	if err := s.require(op, ac, true); err != nil {
		return 0, err
	}

	n, err := s.transport.Download(ctx, filesPath(ac.ProjectID, ac.PayGroupID, id), w)
	s.record(op, err)
	if err != nil {
		return n, fmt.Errorf("download file for payment %d: %w", id, err)
	}
	return n, nil
}

// RemoveFile deletes the attachment of a payment in the active pay group.
// Like the other deletes, the response status is not inspected.
func (s *SessionService) RemoveFile(ctx context.Context, id int64) error {
	const op = "remove_file"
	ac, err := s.writable(op)
	if err != nil {
		return err
	}
	if err := s.require(op, ac, true); err != nil {
		return err
	}

	err = s.transport.Remove(ctx, filesPath(ac.ProjectID, ac.PayGroupID, id))
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("remove file for payment %d: %w", id, err)
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

// createdResponse is the body returned by create endpoints.
type createdResponse struct {
	ID int64 `json:"id"`
}

// writable snapshots the context and rejects the operation in read-only mode.
// It must be the first check of every mutating operation.
func (s *SessionService) writable(op string) (ActiveContext, error) {
	ac := s.Context()
	if ac.ReadOnly {
		s.record(op, domain.ErrReadOnly)
		return ac, domain.ErrReadOnly.WithDetails(fmt.Sprintf("%s rejected while viewing history %q", op, ac.HistoryState))
	}
	return ac, nil
}

// require checks that the context needed to build the path is set.
func (s *SessionService) require(op string, ac ActiveContext, needGroup bool) error {
	var err error
	switch {
	case ac.ProjectID == 0:
		err = domain.ErrNoActiveProject
	case needGroup && ac.PayGroupID == 0:
		err = domain.ErrNoActiveGroup
	}
	if err != nil {
		s.record(op, err)
	}
	return err
}

func (s *SessionService) record(op string, err error) {
	if s.recorder == nil {
		return
	}
	switch {
	case err == nil:
		s.recorder.RecordOperation(op, ResultOK)
	case errors.Is(err, domain.ErrReadOnly):
		s.recorder.RecordOperation(op, ResultReadOnly)
	default:
		s.recorder.RecordOperation(op, ResultError)
	}
}

func projectPath(projectID int64) string {
	return fmt.Sprintf("/projects/%d", projectID)
}

func groupPath(projectID, groupID int64) string {
	return fmt.Sprintf("/projects/%d/paygroups/%d", projectID, groupID)
}

func paymentsPath(projectID, groupID int64) string {
	return groupPath(projectID, groupID) + "/payments"
}

func paymentPath(projectID, groupID, paymentID int64) string {
	return fmt.Sprintf("%s/%d", paymentsPath(projectID, groupID), paymentID)
}

func filesPath(projectID, groupID, paymentID int64) string {
	return paymentPath(projectID, groupID, paymentID) + "/files"
}
