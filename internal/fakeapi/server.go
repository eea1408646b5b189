// Package fakeapi is an in-memory implementation of the platform's task,
// sprint, announcement and evaluation endpoints, used by tests and by the
// dev-server command.
package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/jeryldev/sprintboard/internal/model"
)

// Request is a recorded call, kept for assertions.
type Request struct {
	Method string
	Route  string
	Path   string
	Body   map[string]any
}

type injection struct {
	status int
	body   string
}

type Server struct {
	mu sync.Mutex

	echo    *echo.Echo
	token   string
	groupID int64
	user    model.User

	representative *model.TeamMember
	members        []*model.TeamMember
	sprints        []*model.Sprint
	tasks          []*model.Task
	nextID         int64

	managementID  int64
	announcements []*model.Announcement
	templates     []*model.EvaluationTemplate
	proposal      model.ProposalStatus

	injected map[string][]injection
	requests []Request
}

type Option func(*Server)

// WithToken makes every endpoint require the bearer token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

func WithGroup(id int64) Option {
	return func(s *Server) { s.groupID = id }
}

func WithManagement(id int64) Option {
	return func(s *Server) { s.managementID = id }
}

func WithUser(u model.User) Option {
	return func(s *Server) { s.user = u }
}

// WithLogger logs every request through l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				l.WithFields(logrus.Fields{
					"method":  v.Method,
					"uri":     v.URI,
					"status":  v.Status,
					"latency": v.Latency,
				}).Info("request")
				return nil
			},
		}))
	}
}

func New(opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:         e,
		groupID:      1,
		managementID: 1,
		user:         model.User{ID: 1, Name: "Demo", LastName: "Student", Email: "demo@example.com", Role: "student"},
		nextID:       1,
		injected:     make(map[string][]injection),
		proposal: model.ProposalStatus{
			PartA: model.ProposalPart{Status: "approved"},
			PartB: model.ProposalPart{Status: "approved"},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(s.record, s.authorize, s.inject)
	e.GET("/me", s.getMe)
	e.GET("/sprints", s.getSprints)
	e.GET("/groups/details", s.getGroupDetails)
	e.GET("/tasks", s.getTasks)
	e.POST("/tasks", s.createTask)
	e.PUT("/tasks/:id", s.updateTask)
	e.DELETE("/tasks/:id", s.deleteTask)
	e.GET("/management/:id/announcements", s.getAnnouncements)
	e.GET("/evaluation-templates", s.getTemplates)
	e.GET("/proposal-submission", s.getProposal)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) AddSprint(title string) *model.Sprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := &model.Sprint{ID: int64(len(s.sprints) + 1), Title: title}
	s.sprints = append(s.sprints, sp)
	return sp
}

// SetTeam replaces the group roster.
func (s *Server) SetTeam(representative *model.TeamMember, members ...*model.TeamMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.representative = representative
	s.members = members
}

// AddTask stores a copy of t under a fresh id and returns it.
func (s *Server) AddTask(sprintID int64, t model.Task) *model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	t.SprintID = sprintID
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	s.nextID++
	stored := t.Clone()
	s.tasks = append(s.tasks, stored)
	return stored.Clone()
}

func (s *Server) Task(id int64) *model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.findTask(id); t != nil {
		return t.Clone()
	}
	return nil
}

// MarkReviewed sets the task's reviewed flag, as the grading workflow would.
func (s *Server) MarkReviewed(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.findTask(id); t != nil {
		t.Reviewed = true
	}
}

// Inject makes the next request matching method and route answer with status
// and the raw body. Routes use echo patterns, e.g. "/tasks/:id".
func (s *Server) Inject(method, route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + route
	s.injected[key] = append(s.injected[key], injection{status: status, body: body})
}

// FailNext makes the next matching request fail with a 500.
func (s *Server) FailNext(method, route string) {
	s.Inject(method, route, http.StatusInternalServerError, `{"success":false,"message":"injected failure"}`)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests counts recorded requests matching method and route.
func (s *Server) CountRequests(method, route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Route == route {
			n++
		}
	}
	return n
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := Request{Method: c.Request().Method, Route: c.Path(), Path: c.Request().URL.Path}
		if c.Request().ContentLength != 0 && c.Request().Body != nil {
			var body map[string]any
			if err := c.Echo().JSONSerializer.Deserialize(c, &body); err == nil {
				req.Body = body
				c.Set("body", body)
			}
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.token == "" {
			return next(c)
		}
		if c.Request().Header.Get("Authorization") != "Bearer "+s.token {
			return c.JSON(http.StatusUnauthorized, failure("unauthorized"))
		}
		return next(c)
	}
}

func (s *Server) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Path()
		s.mu.Lock()
		queue := s.injected[key]
		if len(queue) == 0 {
			s.mu.Unlock()
			return next(c)
		}
		inj := queue[0]
		s.injected[key] = queue[1:]
		s.mu.Unlock()
		return c.Blob(inj.status, echo.MIMEApplicationJSON, []byte(inj.body))
	}
}

func success(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

func failure(msg string) map[string]any {
	return map[string]any{"success": false, "message": msg}
}

func (s *Server) getMe(c echo.Context) error {
	s.mu.Lock()
	u := s.user
	s.mu.Unlock()
	return c.JSON(http.StatusOK, success(map[string]any{"item": u}))
}

// SetUser changes the account reported by /me.
func (s *Server) SetUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Server) getSprints(c echo.Context) error {
	groupID, err := queryID(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure(err.Error()))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if groupID != s.groupID {
		return c.JSON(http.StatusOK, []*model.Sprint{})
	}
	return c.JSON(http.StatusOK, s.sprints)
}

func (s *Server) getGroupDetails(c echo.Context) error {
	groupID, err := queryID(c, "group_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure(err.Error()))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if groupID != s.groupID {
		return c.JSON(http.StatusNotFound, failure("group not found"))
	}
	members := make(map[string]*model.TeamMember, len(s.members))
	for _, m := range s.members {
		members[strconv.FormatInt(m.ID, 10)] = m
	}
	group := map[string]any{
		"id":             s.groupID,
		"representative": s.representative,
		"members":        members,
	}
	return c.JSON(http.StatusOK, success(map[string]any{"group": group}))
}

func (s *Server) getTasks(c echo.Context) error {
	sprintID, err := queryID(c, "sprint_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure(err.Error()))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]*model.Task, 0)
	for _, t := range s.tasks {
		if t.SprintID == sprintID {
			items = append(items, t)
		}
	}
	return c.JSON(http.StatusOK, success(map[string]any{"items": items}))
}

func (s *Server) createTask(c echo.Context) error {
	body, _ := c.Get("body").(map[string]any)
	sprintID := int64(numberField(body, "sprint_id"))
	title, _ := body["title"].(string)
	description, _ := body["description"].(string)
	assignees := idList(body["assigned_to"])

	if strings.TrimSpace(title) == "" || len(assignees) == 0 {
		return c.JSON(http.StatusUnprocessableEntity, failure("title and assigned_to are required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if model.FindSprint(s.sprints, sprintID) == nil {
		return c.JSON(http.StatusNotFound, failure("sprint not found"))
	}
	t := &model.Task{
		ID:          s.nextID,
		SprintID:    sprintID,
		Title:       title,
		Description: description,
		Status:      model.StatusTodo,
		AssignedTo:  s.userRefs(assignees),
		Resources:   linkResources(body["links"]),
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	return c.JSON(http.StatusCreated, success(map[string]any{"item": t}))
}

func (s *Server) updateTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid task id"))
	}
	body, _ := c.Get("body").(map[string]any)

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTask(id)
	if t == nil {
		return c.JSON(http.StatusNotFound, failure("task not found"))
	}
	if t.Locked() {
		return c.JSON(http.StatusForbidden, failure("task has been reviewed"))
	}
	if v, ok := body["status"].(string); ok {
		status, err := model.ParseStatus(v)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, failure(err.Error()))
		}
		t.Status = status
	}
	if v, ok := body["title"].(string); ok {
		t.Title = v
	}
	if v, ok := body["description"].(string); ok {
		t.Description = v
	}
	if _, ok := body["assigned_to"]; ok {
		t.AssignedTo = s.userRefs(idList(body["assigned_to"]))
	}
	if _, ok := body["links"]; ok {
		var files []model.Resource
		for _, r := range t.Resources {
			if r.Type == model.ResourceFile {
				files = append(files, r)
			}
		}
		t.Resources = append(files, linkResources(body["links"])...)
	}
	return c.JSON(http.StatusOK, success(map[string]any{"item": t}))
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid task id"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID != id {
			continue
		}
		if t.Locked() {
			return c.JSON(http.StatusForbidden, failure("task has been reviewed"))
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		return c.JSON(http.StatusOK, map[string]any{"success": true})
	}
	return c.JSON(http.StatusNotFound, failure("task not found"))
}

func (s *Server) findTask(id int64) *model.Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Server) userRefs(ids []int64) []model.UserRef {
	refs := make([]model.UserRef, 0, len(ids))
	for _, id := range ids {
		ref := model.UserRef{ID: id}
		for _, m := range s.roster() {
			if m.ID == id {
				ref.Name = m.Name
				ref.LastName = m.LastName
				break
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

func (s *Server) roster() []*model.TeamMember {
	if s.representative == nil {
		return s.members
	}
	return append([]*model.TeamMember{s.representative}, s.members...)
}

func queryID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func numberField(body map[string]any, key string) float64 {
	n, _ := body[key].(float64)
	return n
}

func idList(v any) []int64 {
	raw, _ := v.([]any)
	ids := make([]int64, 0, len(raw))
	for _, item := range raw {
		if n, ok := item.(float64); ok {
			ids = append(ids, int64(n))
		}
	}
	return ids
}

func linkResources(v any) []model.Resource {
	raw, _ := v.([]any)
	var out []model.Resource
	for _, item := range raw {
		if url, ok := item.(string); ok && url != "" {
			out = append(out, model.Resource{Type: model.ResourceLink, Name: url, URL: url})
		}
	}
	return out
}
