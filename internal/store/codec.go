package store

import (
	"fmt"
	"time"

	"pulse-backend/internal/backend"
	"pulse-backend/internal/model"
)

// This file is the parse-or-reject boundary between raw backend rows and the
// typed collections. A row with an unrecognized enum value or an uncoercible
// field is rejected with an error, never silently defaulted. Absent optional
// columns take their declared schema defaults.

// reservationColumns maps client-facing reservation field names to storage
// column names.
var reservationColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"phone":       "phone",
	"date":        "booking_date",
	"time":        "booking_time",
	"partySize":   "party_size",
	"table":       "table_id",
	"zone":        "zone",
	"status":      "status",
	"totalAmount": "total_amount",
	"vip":         "is_vip",
	"createdAt":   "created_at",
}

var tenantColumns = map[string]string{
	"location": "location",
	"status":   "status",
	"load":     "load",
	"yield":    "yield",
	"health":   "health",
}

var staffColumns = map[string]string{
	"name":   "name",
	"role":   "role",
	"status": "status",
	"sector": "sector",
}

// translatePatch converts a partial update keyed by client field names into a
// storage row. Unknown fields are rejected; nil values are omitted from the
// write payload.
func translatePatch(fields map[string]any, columns map[string]string) (backend.Row, error) {
	row := make(backend.Row, len(fields))
	for k, v := range fields {
		col, ok := columns[k]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", k)
		}
		if v == nil {
			continue
		}
		row[col] = v
	}
	return row, nil
}

func decodeReservation(row backend.Row) (model.Reservation, error) {
	id, err := fieldString(row, "id")
	if err != nil {
		return model.Reservation{}, err
	}
	if id == "" {
		return model.Reservation{}, fmt.Errorf("reservation row has no id")
	}

	r := model.Reservation{ID: id}
	if r.Name, err = fieldString(row, "name"); err != nil {
		return model.Reservation{}, err
	}
	if r.Email, err = fieldString(row, "email"); err != nil {
		return model.Reservation{}, err
	}
	if r.Phone, err = fieldString(row, "phone"); err != nil {
		return model.Reservation{}, err
	}
	if r.Date, err = fieldString(row, "booking_date"); err != nil {
		return model.Reservation{}, err
	}
	if r.Time, err = fieldString(row, "booking_time"); err != nil {
		return model.Reservation{}, err
	}
	if r.PartySize, err = fieldInt(row, "party_size"); err != nil {
		return model.Reservation{}, err
	}
	if r.Table, err = fieldString(row, "table_id"); err != nil {
		return model.Reservation{}, err
	}
	if r.TotalAmount, err = fieldFloat(row, "total_amount"); err != nil {
		return model.Reservation{}, err
	}
	if r.VIP, err = fieldBool(row, "is_vip"); err != nil {
		return model.Reservation{}, err
	}
	if r.CreatedAt, err = fieldTime(row, "created_at"); err != nil {
		return model.Reservation{}, err
	}

	zone, err := fieldString(row, "zone")
	if err != nil {
		return model.Reservation{}, err
	}
	if zone == "" {
		r.Zone = model.ZoneMainFloor // schema default
	} else if !model.ValidZone(model.TableZone(zone)) {
		return model.Reservation{}, fmt.Errorf("reservation %s: unknown zone %q", id, zone)
	} else {
		r.Zone = model.TableZone(zone)
	}

	status, err := fieldString(row, "status")
	if err != nil {
		return model.Reservation{}, err
	}
	if status == "" {
		r.Status = model.StatusPending // schema default
	} else if !model.ValidStatus(model.ReservationStatus(status)) {
		return model.Reservation{}, fmt.Errorf("reservation %s: unknown status %q", id, status)
	} else {
		r.Status = model.ReservationStatus(status)
	}

	return r, nil
}

// encodeReservation builds the insert payload for a reservation. Empty
// optional fields are omitted so the backend applies its column defaults.
// The identifier is never included: the backend assigns the canonical one.
func encodeReservation(r model.Reservation) backend.Row {
	row := backend.Row{
		"name":         r.Name,
		"email":        r.Email,
		"booking_date": r.Date,
		"booking_time": r.Time,
		"party_size":   r.PartySize,
		"zone":         string(r.Zone),
		"status":       string(r.Status),
		"total_amount": r.TotalAmount,
		"is_vip":       r.VIP,
	}
	if r.Phone != "" {
		row["phone"] = r.Phone
	}
	if r.Table != "" {
		row["table_id"] = r.Table
	}
	if !r.CreatedAt.IsZero() {
		row["created_at"] = r.CreatedAt
	}
	return row
}

func decodeTenant(row backend.Row) (model.Tenant, error) {
	id, err := fieldString(row, "id")
	if err != nil {
		return model.Tenant{}, err
	}
	if id == "" {
		return model.Tenant{}, fmt.Errorf("tenant row has no id")
	}

	t := model.Tenant{ID: id}
	if t.Location, err = fieldString(row, "location"); err != nil {
		return model.Tenant{}, err
	}
	if t.Load, err = fieldString(row, "load"); err != nil {
		return model.Tenant{}, err
	}
	if t.Yield, err = fieldFloat(row, "yield"); err != nil {
		return model.Tenant{}, err
	}
	if t.Health, err = fieldInt(row, "health"); err != nil {
		return model.Tenant{}, err
	}
	if t.CreatedAt, err = fieldTime(row, "created_at"); err != nil {
		return model.Tenant{}, err
	}

	status, err := fieldString(row, "status")
	if err != nil {
		return model.Tenant{}, err
	}
	if status == "" {
		t.Status = model.TenantSyncing // schema default
	} else if !model.ValidTenantStatus(model.TenantStatus(status)) {
		return model.Tenant{}, fmt.Errorf("tenant %s: unknown status %q", id, status)
	} else {
		t.Status = model.TenantStatus(status)
	}

	return t, nil
}

func decodeStaff(row backend.Row) (model.StaffMember, error) {
	id, err := fieldString(row, "id")
	if err != nil {
		return model.StaffMember{}, err
	}
	if id == "" {
		return model.StaffMember{}, fmt.Errorf("staff row has no id")
	}

	m := model.StaffMember{ID: id}
	if m.Name, err = fieldString(row, "name"); err != nil {
		return model.StaffMember{}, err
	}
	if m.Role, err = fieldString(row, "role"); err != nil {
		return model.StaffMember{}, err
	}
	if m.Sector, err = fieldString(row, "sector"); err != nil {
		return model.StaffMember{}, err
	}
	if m.CreatedAt, err = fieldTime(row, "created_at"); err != nil {
		return model.StaffMember{}, err
	}

	status, err := fieldString(row, "status")
	if err != nil {
		return model.StaffMember{}, err
	}
	if status == "" {
		m.Status = model.StaffActive // schema default
	} else if !model.ValidStaffStatus(model.StaffStatus(status)) {
		return model.StaffMember{}, fmt.Errorf("staff %s: unknown status %q", id, status)
	} else {
		m.Status = model.StaffStatus(status)
	}

	return m, nil
}

func decodeAudit(row backend.Row) (model.AuditEntry, error) {
	id, err := fieldString(row, "id")
	if err != nil {
		return model.AuditEntry{}, err
	}
	if id == "" {
		return model.AuditEntry{}, fmt.Errorf("audit row has no id")
	}

	e := model.AuditEntry{ID: id}
	if e.Action, err = fieldString(row, "action"); err != nil {
		return model.AuditEntry{}, err
	}
	if e.User, err = fieldString(row, "user"); err != nil {
		return model.AuditEntry{}, err
	}
	if e.Details, err = fieldString(row, "details"); err != nil {
		return model.AuditEntry{}, err
	}
	if e.Timestamp, err = fieldTime(row, "timestamp"); err != nil {
		return model.AuditEntry{}, err
	}
	return e, nil
}

// --- typed field extraction ---
//
// Values arrive either from database/sql scans (int64, float64, []byte,
// time.Time, bool) or from JSON-decoded change events (float64, string,
// bool). Anything outside those concrete shapes is an error.

func fieldString(row backend.Row, key string) (string, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case int64:
		return fmt.Sprintf("%d", s), nil
	case float64:
		return fmt.Sprintf("%v", s), nil
	default:
		return "", fmt.Errorf("column %s: cannot read %T as string", key, v)
	}
}

func fieldInt(row backend.Row, key string) (int, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("column %s: cannot read %T as int", key, v)
	}
}

func fieldFloat(row backend.Row, key string) (float64, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("column %s: cannot read %T as float", key, v)
	}
}

func fieldBool(row backend.Row, key string) (bool, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64: // sqlite stores booleans as integers
		return b != 0, nil
	default:
		return false, fmt.Errorf("column %s: cannot read %T as bool", key, v)
	}
}

func fieldTime(row backend.Row, key string) (time.Time, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("column %s: unparseable timestamp %q", key, t)
	default:
		return time.Time{}, fmt.Errorf("column %s: cannot read %T as time", key, v)
	}
}
