package services

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/devagency-api/internal/finance"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
)

var errBoom = errors.New("boom")

// memStore is an in-memory database shared by the fake repositories. Its
// Transaction method restores the previous state when fn fails.
type memStore struct {
	nextID        uint
	clients       map[uint]models.Client
	developers    map[uint]models.Developer
	projects      map[uint]models.Project
	payments      map[uint]models.Payment
	assignments   map[uint]models.ProjectDeveloper
	costs         map[uint]models.AdditionalCost
	users         map[uint]models.User
	notifications map[uint]models.Notification
	events        []models.ProjectStatusEvent
	audits        []models.AuditLog
	failOn        map[string]error
	now           time.Time
	transactions  int
}

func newMemStore() *memStore {
	return &memStore{
		clients:       make(map[uint]models.Client),
		developers:    make(map[uint]models.Developer),
		projects:      make(map[uint]models.Project),
		payments:      make(map[uint]models.Payment),
		assignments:   make(map[uint]models.ProjectDeveloper),
		costs:         make(map[uint]models.AdditionalCost),
		users:         make(map[uint]models.User),
		notifications: make(map[uint]models.Notification),
		failOn:        make(map[string]error),
		now:           time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) fail(op string) error {
	return s.failOn[op]
}

func (s *memStore) repos() *repository.Repositories {
	return &repository.Repositories{
		User:         &memUserRepo{s: s},
		Client:       &memClientRepo{s: s},
		Developer:    &memDeveloperRepo{s: s},
		Project:      &memProjectRepo{s: s},
		Payment:      &memPaymentRepo{s: s},
		StatusEvent:  &memStatusEventRepo{s: s},
		Notification: &memNotificationRepo{s: s},
		Audit:        &memAuditRepo{s: s},
	}
}

func (s *memStore) Transaction(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	defer func() { s.transactions++ }()
	snapshot := *s
	snapshot.clients = maps.Clone(s.clients)
	snapshot.developers = maps.Clone(s.developers)
	snapshot.projects = maps.Clone(s.projects)
	snapshot.payments = maps.Clone(s.payments)
	snapshot.assignments = maps.Clone(s.assignments)
	snapshot.costs = maps.Clone(s.costs)
	snapshot.users = maps.Clone(s.users)
	snapshot.notifications = maps.Clone(s.notifications)
	snapshot.events = slices.Clone(s.events)
	snapshot.audits = slices.Clone(s.audits)

	if err := fn(s.repos()); err != nil {
		failOn := s.failOn
		*s = snapshot
		s.failOn = failOn
		return err
	}
	return nil
}

func (s *memStore) loadProject(id uint) (*models.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p.Client = s.clients[p.ClientID]
	p.Payments = nil
	p.Developers = nil
	p.AdditionalCosts = nil

	for _, pay := range s.payments {
		if pay.ProjectID == id {
			p.Payments = append(p.Payments, pay)
		}
	}
	sort.Slice(p.Payments, func(i, j int) bool { return p.Payments[i].Sequence < p.Payments[j].Sequence })

	for _, a := range s.assignments {
		if a.ProjectID == id {
			a.Developer = s.developers[a.DeveloperID]
			p.Developers = append(p.Developers, a)
		}
	}
	sort.Slice(p.Developers, func(i, j int) bool { return p.Developers[i].ID < p.Developers[j].ID })

	for _, c := range s.costs {
		if c.ProjectID == id {
			p.AdditionalCosts = append(p.AdditionalCosts, c)
		}
	}
	sort.Slice(p.AdditionalCosts, func(i, j int) bool { return p.AdditionalCosts[i].ID < p.AdditionalCosts[j].ID })
	return &p, nil
}

func (s *memStore) projectEvents(projectID uint) []models.ProjectStatusEvent {
	var out []models.ProjectStatusEvent
	for _, e := range s.events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) projectRows(projectID uint) (payments, assignments, costs int) {
	for _, p := range s.payments {
		if p.ProjectID == projectID {
			payments++
		}
	}
	for _, a := range s.assignments {
		if a.ProjectID == projectID {
			assignments++
		}
	}
	for _, c := range s.costs {
		if c.ProjectID == projectID {
			costs++
		}
	}
	return
}

func newQuery(filters map[string]string) *repository.ListQuery {
	query := repository.NewListQuery()
	maps.Copy(query.Filters, filters)
	return query
}

func stripProject(p models.Project) models.Project {
	p.Client = models.Client{}
	p.Payments = nil
	p.Developers = nil
	p.AdditionalCosts = nil
	return p
}

type memProjectRepo struct {
	repository.ProjectRepository
	s *memStore
}

func (r *memProjectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	if err := r.s.fail("Project.FindByID"); err != nil {
		return nil, err
	}
	return r.s.loadProject(id)
}

func (r *memProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if err := r.s.fail("Project.Create"); err != nil {
		return err
	}
	project.ID = r.s.id()
	project.CreatedAt = r.s.now
	project.UpdatedAt = r.s.now
	r.s.projects[project.ID] = stripProject(*project)
	return nil
}

func (r *memProjectRepo) Update(ctx context.Context, project *models.Project) error {
	if err := r.s.fail("Project.Update"); err != nil {
		return err
	}
	if _, ok := r.s.projects[project.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	project.UpdatedAt = r.s.now
	r.s.projects[project.ID] = stripProject(*project)
	return nil
}

func (r *memProjectRepo) Delete(ctx context.Context, id uint) error {
	if err := r.s.fail("Project.Delete"); err != nil {
		return err
	}
	for k, v := range r.s.payments {
		if v.ProjectID == id {
			delete(r.s.payments, k)
		}
	}
	for k, v := range r.s.assignments {
		if v.ProjectID == id {
			delete(r.s.assignments, k)
		}
	}
	for k, v := range r.s.costs {
		if v.ProjectID == id {
			delete(r.s.costs, k)
		}
	}
	r.s.events = slices.DeleteFunc(r.s.events, func(e models.ProjectStatusEvent) bool { return e.ProjectID == id })
	delete(r.s.projects, id)
	return nil
}

func (r *memProjectRepo) all(query *repository.ListQuery) []models.Project {
	var out []models.Project
	ids := slices.Sorted(maps.Keys(r.s.projects))
	for _, id := range ids {
		p, _ := r.s.loadProject(id)
		if query != nil {
			if st := query.Filters["status"]; st != "" && p.Status != st {
				continue
			}
			if query.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(query.Search)) {
				continue
			}
		}
		out = append(out, *p)
	}
	return out
}

func (r *memProjectRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Project, int64, error) {
	all := r.all(query)
	return all, int64(len(all)), nil
}

func (r *memProjectRepo) FindAllWithDetails(ctx context.Context, query *repository.ListQuery) ([]models.Project, error) {
	return r.all(query), nil
}

func (r *memProjectRepo) CountByClient(ctx context.Context, clientID uint) (int64, error) {
	var n int64
	for _, p := range r.s.projects {
		if p.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (r *memProjectRepo) ReplaceDevelopers(ctx context.Context, projectID uint, devs []models.ProjectDeveloper) error {
	if err := r.s.fail("Project.ReplaceDevelopers"); err != nil {
		return err
	}
	for k, v := range r.s.assignments {
		if v.ProjectID == projectID {
			delete(r.s.assignments, k)
		}
	}
	for i := range devs {
		devs[i].ID = r.s.id()
		devs[i].ProjectID = projectID
		row := devs[i]
		row.Developer = models.Developer{}
		r.s.assignments[row.ID] = row
	}
	return nil
}

func (r *memProjectRepo) ReplaceAdditionalCosts(ctx context.Context, projectID uint, costs []models.AdditionalCost) error {
	if err := r.s.fail("Project.ReplaceAdditionalCosts"); err != nil {
		return err
	}
	for k, v := range r.s.costs {
		if v.ProjectID == projectID {
			delete(r.s.costs, k)
		}
	}
	for i := range costs {
		costs[i].ID = r.s.id()
		costs[i].ProjectID = projectID
		r.s.costs[costs[i].ID] = costs[i]
	}
	return nil
}

func (r *memProjectRepo) UpdateDeveloper(ctx context.Context, dev *models.ProjectDeveloper) error {
	if err := r.s.fail("Project.UpdateDeveloper"); err != nil {
		return err
	}
	if _, ok := r.s.assignments[dev.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *dev
	row.Developer = models.Developer{}
	r.s.assignments[dev.ID] = row
	return nil
}

type memPaymentRepo struct {
	repository.PaymentRepository
	s *memStore
}

func (r *memPaymentRepo) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	p, ok := r.s.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memPaymentRepo) FindByProject(ctx context.Context, projectID uint) ([]models.Payment, error) {
	p, err := r.s.loadProject(projectID)
	if err != nil {
		return nil, nil
	}
	return p.Payments, nil
}

func (r *memPaymentRepo) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if err := r.s.fail("Payment.CreateBatch"); err != nil {
		return err
	}
	for i := range payments {
		payments[i].ID = r.s.id()
		r.s.payments[payments[i].ID] = payments[i]
	}
	return nil
}

func (r *memPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	if err := r.s.fail("Payment.Update"); err != nil {
		return err
	}
	if _, ok := r.s.payments[payment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *payment
	row.Project = models.Project{}
	r.s.payments[payment.ID] = row
	return nil
}

func (r *memPaymentRepo) FindOverdue(ctx context.Context, asOf time.Time) ([]models.Payment, error) {
	var out []models.Payment
	ids := slices.Sorted(maps.Keys(r.s.payments))
	for _, id := range ids {
		p := r.s.payments[id]
		project := r.s.projects[p.ProjectID]
		if p.IsPaid() || !p.DueDate.Before(asOf) || project.IsTerminal() || project.IsCompleted() {
			continue
		}
		p.Project = project
		out = append(out, p)
	}
	return out, nil
}

type memStatusEventRepo struct {
	repository.StatusEventRepository
	s *memStore
}

func (r *memStatusEventRepo) Create(ctx context.Context, event *models.ProjectStatusEvent) error {
	if err := r.s.fail("StatusEvent.Create"); err != nil {
		return err
	}
	event.ID = r.s.id()
	event.CreatedAt = r.s.now
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r *memStatusEventRepo) FindByProject(ctx context.Context, projectID uint) ([]models.ProjectStatusEvent, error) {
	return r.s.projectEvents(projectID), nil
}

type memClientRepo struct {
	repository.ClientRepository
	s *memStore
}

func (r *memClientRepo) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	c, ok := r.s.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *memClientRepo) Create(ctx context.Context, client *models.Client) error {
	client.ID = r.s.id()
	r.s.clients[client.ID] = *client
	return nil
}

func (r *memClientRepo) Update(ctx context.Context, client *models.Client) error {
	r.s.clients[client.ID] = *client
	return nil
}

func (r *memClientRepo) Delete(ctx context.Context, id uint) error {
	delete(r.s.clients, id)
	return nil
}

func (r *memClientRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Client, int64, error) {
	var out []models.Client
	for _, id := range slices.Sorted(maps.Keys(r.s.clients)) {
		out = append(out, r.s.clients[id])
	}
	return out, int64(len(out)), nil
}

type memDeveloperRepo struct {
	repository.DeveloperRepository
	s *memStore
}

func (r *memDeveloperRepo) FindByID(ctx context.Context, id uint) (*models.Developer, error) {
	d, ok := r.s.developers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *memDeveloperRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Developer, error) {
	var out []models.Developer
	for _, id := range ids {
		if d, ok := r.s.developers[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDeveloperRepo) Create(ctx context.Context, developer *models.Developer) error {
	developer.ID = r.s.id()
	r.s.developers[developer.ID] = *developer
	return nil
}

func (r *memDeveloperRepo) Update(ctx context.Context, developer *models.Developer) error {
	r.s.developers[developer.ID] = *developer
	return nil
}

func (r *memDeveloperRepo) Delete(ctx context.Context, id uint) error {
	delete(r.s.developers, id)
	return nil
}

func (r *memDeveloperRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Developer, int64, error) {
	var out []models.Developer
	for _, id := range slices.Sorted(maps.Keys(r.s.developers)) {
		out = append(out, r.s.developers[id])
	}
	return out, int64(len(out)), nil
}

func (r *memDeveloperRepo) CountAssignments(ctx context.Context, developerID uint) (int64, error) {
	var n int64
	for _, a := range r.s.assignments {
		if a.DeveloperID == developerID {
			n++
		}
	}
	return n, nil
}

type memUserRepo struct {
	repository.UserRepository
	s *memStore
}

func (r *memUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, user *models.User) error {
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) FindAdmins(ctx context.Context) ([]models.User, error) {
	if err := r.s.fail("User.FindAdmins"); err != nil {
		return nil, err
	}
	var out []models.User
	for _, id := range slices.Sorted(maps.Keys(r.s.users)) {
		u := r.s.users[id]
		if u.IsAdmin() && u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

type memNotificationRepo struct {
	repository.NotificationRepository
	s *memStore
}

func (r *memNotificationRepo) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &n, nil
}

func (r *memNotificationRepo) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, id := range slices.Sorted(maps.Keys(r.s.notifications)) {
		if n := r.s.notifications[id]; n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = r.s.id()
	notification.CreatedAt = r.s.now
	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r *memNotificationRepo) Update(ctx context.Context, notification *models.Notification) error {
	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r *memNotificationRepo) MarkAllAsRead(ctx context.Context, userID uint) error {
	for id, n := range r.s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			now := r.s.now
			n.ReadAt = &now
			r.s.notifications[id] = n
		}
	}
	return nil
}

func (r *memNotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) ExistsSince(ctx context.Context, userID, projectID uint, notificationType string, since time.Time) (bool, error) {
	for _, n := range r.s.notifications {
		if n.UserID == userID && n.ProjectID != nil && *n.ProjectID == projectID &&
			n.NotificationType != nil && *n.NotificationType == notificationType && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type memAuditRepo struct {
	repository.AuditRepository
	s *memStore
}

func (r *memAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	entry.ID = r.s.id()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r *memAuditRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return r.s.audits, int64(len(r.s.audits)), nil
}

// recordingSink captures status changes delivered by ProjectService
type recordingSink struct {
	changes []finance.StatusChange
	names   []string
}

func (r *recordingSink) ProjectStatusChanged(ctx context.Context, change finance.StatusChange, projectName string) error {
	r.changes = append(r.changes, change)
	r.names = append(r.names, projectName)
	return nil
}
