package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"pulse-backend/internal/backend"
	"pulse-backend/internal/feed"
	"pulse-backend/internal/model"
)

// Store maintains eventually-consistent in-memory mirrors of the four
// backend tables. Mutations are applied locally first so callers see their
// intent immediately, then written through the backend client; inbound
// change-feed events converge the mirrors to ground truth. The Store owns
// the collections exclusively; accessors hand out copies.
type Store struct {
	mu     sync.RWMutex
	client backend.Client

	reservations []model.Reservation
	tenants      []model.Tenant
	staff        []model.StaffMember
	audit        []model.AuditEntry

	degraded bool
}

// New creates a Store around the given backend client. Collections are empty
// until LoadAll succeeds.
func New(client backend.Client) *Store {
	return &Store{client: client}
}

// Degraded reports whether the last load found the schema missing. The
// caller surfaces this as a setup prompt rather than a fault.
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// LoadAll fetches a full snapshot of every mirrored collection. A missing
// table flips the store into the degraded state and is returned wrapped in
// backend.ErrSchemaMissing; transient errors on individual collections are
// logged and the previous snapshot for that collection is retained.
func (s *Store) LoadAll(ctx context.Context) error {
	var loadErrs []error

	resRows, err := s.client.SelectAll(ctx, "reservations", backend.SelectOptions{Order: "created_at DESC"})
	if errors.Is(err, backend.ErrSchemaMissing) {
		s.setDegraded(true)
		return err
	}
	if err != nil {
		log.Printf("load reservations failed, keeping previous snapshot: %v", err)
		loadErrs = append(loadErrs, err)
	} else {
		s.replaceReservations(decodeReservations(resRows))
	}

	staffRows, err := s.client.SelectAll(ctx, "staff", backend.SelectOptions{Order: "name ASC"})
	if errors.Is(err, backend.ErrSchemaMissing) {
		s.setDegraded(true)
		return err
	}
	if err != nil {
		log.Printf("load staff failed, keeping previous snapshot: %v", err)
		loadErrs = append(loadErrs, err)
	} else {
		s.replaceStaff(decodeStaffRows(staffRows))
	}

	tenantRows, err := s.client.SelectAll(ctx, "tenants", backend.SelectOptions{Order: "created_at ASC"})
	if err != nil {
		log.Printf("load tenants failed, keeping previous snapshot: %v", err)
		loadErrs = append(loadErrs, err)
	} else {
		s.replaceTenants(decodeTenants(tenantRows))
	}

	auditRows, err := s.client.SelectAll(ctx, "audit_logs", backend.SelectOptions{Order: "timestamp DESC", Limit: model.AuditLimit})
	if err != nil {
		log.Printf("load audit log failed, keeping previous snapshot: %v", err)
		loadErrs = append(loadErrs, err)
	} else {
		s.replaceAudit(decodeAuditRows(auditRows))
	}

	if len(loadErrs) == 0 {
		s.setDegraded(false)
	}
	return errors.Join(loadErrs...)
}

func decodeReservations(rows []backend.Row) []model.Reservation {
	out := make([]model.Reservation, 0, len(rows))
	for _, row := range rows {
		r, err := decodeReservation(row)
		if err != nil {
			log.Printf("rejecting malformed reservation row: %v", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

func decodeTenants(rows []backend.Row) []model.Tenant {
	out := make([]model.Tenant, 0, len(rows))
	for _, row := range rows {
		t, err := decodeTenant(row)
		if err != nil {
			log.Printf("rejecting malformed tenant row: %v", err)
			continue
		}
		out = append(out, t)
	}
	return out
}

func decodeStaffRows(rows []backend.Row) []model.StaffMember {
	out := make([]model.StaffMember, 0, len(rows))
	for _, row := range rows {
		m, err := decodeStaff(row)
		if err != nil {
			log.Printf("rejecting malformed staff row: %v", err)
			continue
		}
		out = append(out, m)
	}
	return out
}

func decodeAuditRows(rows []backend.Row) []model.AuditEntry {
	out := make([]model.AuditEntry, 0, len(rows))
	for _, row := range rows {
		e, err := decodeAudit(row)
		if err != nil {
			log.Printf("rejecting malformed audit row: %v", err)
			continue
		}
		out = append(out, e)
	}
	return out
}

// --- accessors (copies) ---

// Reservations returns a copy of the reservation mirror, newest first.
func (s *Store) Reservations() []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reservation, len(s.reservations))
	copy(out, s.reservations)
	return out
}

// Tenants returns a copy of the tenant mirror, oldest first.
func (s *Store) Tenants() []model.Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Tenant, len(s.tenants))
	copy(out, s.tenants)
	return out
}

// Staff returns a copy of the staff mirror.
func (s *Store) Staff() []model.StaffMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.StaffMember, len(s.staff))
	copy(out, s.staff)
	return out
}

// Audit returns a copy of the audit mirror, newest first.
func (s *Store) Audit() []model.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// --- reservation mutations ---

// CreateReservation inserts a reservation. The local mirror gets an
// optimistic entry under a temporary identifier immediately; once the
// backend returns the canonical row, it replaces the temporary entry in the
// same list position. On failure the optimistic entry is rolled back.
func (s *Store) CreateReservation(ctx context.Context, r model.Reservation) (model.Reservation, error) {
	if r.ID == "" {
		r.ID = model.NewTempID()
	}
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.reservations = append([]model.Reservation{r}, s.reservations...)
	s.mu.Unlock()

	row := encodeReservation(r)
	saved, err := s.client.InsertOne(ctx, "reservations", row)
	if err != nil {
		s.removeReservationLocal(r.ID)
		return model.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	canonical, err := decodeReservation(saved)
	if err != nil {
		s.removeReservationLocal(r.ID)
		return model.Reservation{}, fmt.Errorf("create reservation: bad backend row: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfReservation(canonical.ID) >= 0 {
		// The feed echo landed first; drop the temporary entry.
		s.dropReservation(r.ID)
		return canonical, nil
	}
	if i := s.indexOfReservation(r.ID); i >= 0 {
		s.reservations[i] = canonical
	} else {
		s.reservations = append([]model.Reservation{canonical}, s.reservations...)
	}
	return canonical, nil
}

// UpdateReservation applies a partial update (client field names) to the
// local record immediately, then writes it through. The local change is not
// reverted on backend failure; the next LoadAll reconciles.
func (s *Store) UpdateReservation(ctx context.Context, id string, fields map[string]any) error {
	patch, err := translatePatch(fields, reservationColumns)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if i := s.indexOfReservation(id); i >= 0 {
		if err := patchReservation(&s.reservations[i], fields); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	return s.client.UpdateByID(ctx, "reservations", id, patch)
}

// DeleteReservation removes the local record immediately, regardless of
// whether the backend delete has completed.
func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	s.removeReservationLocal(id)
	return s.client.DeleteByID(ctx, "reservations", id)
}

func (s *Store) removeReservationLocal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropReservation(id)
}

// dropReservation removes by id. Caller holds the lock.
func (s *Store) dropReservation(id string) {
	if i := s.indexOfReservation(id); i >= 0 {
		s.reservations = append(s.reservations[:i], s.reservations[i+1:]...)
	}
}

// indexOfReservation finds id in the mirror. Caller holds the lock.
func (s *Store) indexOfReservation(id string) int {
	for i, r := range s.reservations {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// --- staff mutations ---

// AddStaff inserts a staff member and merges the canonical row locally.
func (s *Store) AddStaff(ctx context.Context, m model.StaffMember) (model.StaffMember, error) {
	row := backend.Row{"name": m.Name, "role": m.Role, "sector": m.Sector}
	if m.Status != "" {
		row["status"] = string(m.Status)
	}
	saved, err := s.client.InsertOne(ctx, "staff", row)
	if err != nil {
		return model.StaffMember{}, fmt.Errorf("add staff: %w", err)
	}
	canonical, err := decodeStaff(saved)
	if err != nil {
		return model.StaffMember{}, fmt.Errorf("add staff: bad backend row: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfStaff(canonical.ID) < 0 {
		s.staff = append(s.staff, canonical)
	}
	return canonical, nil
}

// UpdateStaff applies a partial update locally, then writes it through.
func (s *Store) UpdateStaff(ctx context.Context, id string, fields map[string]any) error {
	patch, err := translatePatch(fields, staffColumns)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if i := s.indexOfStaff(id); i >= 0 {
		if err := patchStaff(&s.staff[i], fields); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	return s.client.UpdateByID(ctx, "staff", id, patch)
}

func (s *Store) indexOfStaff(id string) int {
	for i, m := range s.staff {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// --- tenant mutations ---

// UpdateTenant applies a partial update locally, then writes it through.
func (s *Store) UpdateTenant(ctx context.Context, id string, fields map[string]any) error {
	patch, err := translatePatch(fields, tenantColumns)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if i := s.indexOfTenant(id); i >= 0 {
		if err := patchTenant(&s.tenants[i], fields); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	return s.client.UpdateByID(ctx, "tenants", id, patch)
}

// DeleteTenant removes the node from the backend first, then from the local
// mirror, so a failed decommission leaves the node visible.
func (s *Store) DeleteTenant(ctx context.Context, id string) error {
	if err := s.client.DeleteByID(ctx, "tenants", id); err != nil {
		return err
	}
	s.mu.Lock()
	if i := s.indexOfTenant(id); i >= 0 {
		s.tenants = append(s.tenants[:i], s.tenants[i+1:]...)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) indexOfTenant(id string) int {
	for i, t := range s.tenants {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// --- audit mutations ---

// AppendAudit records an audit entry and prepends the canonical row locally,
// truncating the mirror to the retention cap.
func (s *Store) AppendAudit(ctx context.Context, action, user, details string) error {
	row := backend.Row{"action": action, "user": user, "details": details}
	saved, err := s.client.InsertOne(ctx, "audit_logs", row)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	entry, err := decodeAudit(saved)
	if err != nil {
		return fmt.Errorf("append audit: bad backend row: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfAudit(entry.ID) < 0 {
		s.audit = append([]model.AuditEntry{entry}, s.audit...)
		if len(s.audit) > model.AuditLimit {
			s.audit = s.audit[:model.AuditLimit]
		}
	}
	return nil
}

// DeleteAudit removes the local entry immediately, then writes through.
func (s *Store) DeleteAudit(ctx context.Context, id string) error {
	s.mu.Lock()
	if i := s.indexOfAudit(id); i >= 0 {
		s.audit = append(s.audit[:i], s.audit[i+1:]...)
	}
	s.mu.Unlock()
	return s.client.DeleteByID(ctx, "audit_logs", id)
}

// ClearAudit wipes the audit trail apart from the sentinel row. The local
// mirror is emptied only after the backend confirms.
func (s *Store) ClearAudit(ctx context.Context) error {
	if err := s.client.DeleteAllExcept(ctx, "audit_logs", model.SentinelAuditID); err != nil {
		return err
	}
	s.mu.Lock()
	s.audit = nil
	s.mu.Unlock()
	return nil
}

func (s *Store) indexOfAudit(id string) int {
	for i, e := range s.audit {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// --- change feed ---

// Apply merges one inbound change event into the mirrors. It is idempotent:
// an insert whose identifier already exists locally (the optimistic echo
// case) is a no-op, updates and deletes of absent identifiers are no-ops.
func (s *Store) Apply(ev feed.Event) {
	switch ev.Table {
	case "reservations":
		s.applyReservation(ev)
	case "tenants":
		s.applyTenant(ev)
	case "staff":
		s.applyStaff(ev)
	case "audit_logs":
		s.applyAudit(ev)
	}
}

func (s *Store) applyReservation(ev feed.Event) {
	switch ev.Type {
	case feed.EventInsert, feed.EventUpdate:
		r, err := decodeReservation(ev.New)
		if err != nil {
			log.Printf("rejecting %s event: %v", ev.Type, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.indexOfReservation(r.ID)
		switch {
		case ev.Type == feed.EventInsert && i < 0:
			s.reservations = append([]model.Reservation{r}, s.reservations...)
		case ev.Type == feed.EventUpdate && i >= 0:
			s.reservations[i] = r
		}
	case feed.EventDelete:
		id, err := fieldString(ev.Old, "id")
		if err != nil || id == "" {
			log.Printf("rejecting delete event without id: %v", err)
			return
		}
		s.removeReservationLocal(id)
	}
}

func (s *Store) applyTenant(ev feed.Event) {
	switch ev.Type {
	case feed.EventInsert, feed.EventUpdate:
		t, err := decodeTenant(ev.New)
		if err != nil {
			log.Printf("rejecting %s event: %v", ev.Type, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.indexOfTenant(t.ID)
		switch {
		case ev.Type == feed.EventInsert && i < 0:
			s.tenants = append(s.tenants, t)
		case ev.Type == feed.EventUpdate && i >= 0:
			s.tenants[i] = t
		}
	case feed.EventDelete:
		id, err := fieldString(ev.Old, "id")
		if err != nil || id == "" {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.indexOfTenant(id); i >= 0 {
			s.tenants = append(s.tenants[:i], s.tenants[i+1:]...)
		}
	}
}

func (s *Store) applyStaff(ev feed.Event) {
	switch ev.Type {
	case feed.EventInsert, feed.EventUpdate:
		m, err := decodeStaff(ev.New)
		if err != nil {
			log.Printf("rejecting %s event: %v", ev.Type, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.indexOfStaff(m.ID)
		switch {
		case ev.Type == feed.EventInsert && i < 0:
			s.staff = append(s.staff, m)
		case ev.Type == feed.EventUpdate && i >= 0:
			s.staff[i] = m
		}
	case feed.EventDelete:
		id, err := fieldString(ev.Old, "id")
		if err != nil || id == "" {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.indexOfStaff(id); i >= 0 {
			s.staff = append(s.staff[:i], s.staff[i+1:]...)
		}
	}
}

func (s *Store) applyAudit(ev feed.Event) {
	switch ev.Type {
	case feed.EventInsert:
		e, err := decodeAudit(ev.New)
		if err != nil {
			log.Printf("rejecting insert event: %v", err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.indexOfAudit(e.ID) >= 0 {
			return
		}
		s.audit = append([]model.AuditEntry{e}, s.audit...)
		if len(s.audit) > model.AuditLimit {
			s.audit = s.audit[:model.AuditLimit]
		}
	case feed.EventDelete:
		id, err := fieldString(ev.Old, "id")
		if err != nil || id == "" {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.indexOfAudit(id); i >= 0 {
			s.audit = append(s.audit[:i], s.audit[i+1:]...)
		}
	}
}

// --- internal snapshot replacement ---

func (s *Store) setDegraded(v bool) {
	s.mu.Lock()
	s.degraded = v
	s.mu.Unlock()
}

func (s *Store) replaceReservations(rs []model.Reservation) {
	s.mu.Lock()
	s.reservations = rs
	s.mu.Unlock()
}

func (s *Store) replaceTenants(ts []model.Tenant) {
	s.mu.Lock()
	s.tenants = ts
	s.mu.Unlock()
}

func (s *Store) replaceStaff(ms []model.StaffMember) {
	s.mu.Lock()
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Name < ms[j].Name })
	s.staff = ms
	s.mu.Unlock()
}

func (s *Store) replaceAudit(es []model.AuditEntry) {
	s.mu.Lock()
	if len(es) > model.AuditLimit {
		es = es[:model.AuditLimit]
	}
	s.audit = es
	s.mu.Unlock()
}
