package store

import (
	"fmt"

	"pulse-backend/internal/model"
)

// Patch application for optimistic local updates. Fields are keyed by the
// client-facing names; values come straight from decoded JSON bodies, so the
// same typed extraction rules apply as at the row boundary.

func patchReservation(r *model.Reservation, fields map[string]any) error {
	for k, v := range fields {
		if v == nil {
			continue
		}
		var err error
		switch k {
		case "name":
			r.Name, err = asString(k, v)
		case "email":
			r.Email, err = asString(k, v)
		case "phone":
			r.Phone, err = asString(k, v)
		case "date":
			r.Date, err = asString(k, v)
		case "time":
			r.Time, err = asString(k, v)
		case "partySize":
			r.PartySize, err = asInt(k, v)
		case "table":
			r.Table, err = asString(k, v)
		case "zone":
			var z string
			if z, err = asString(k, v); err == nil {
				if !model.ValidZone(model.TableZone(z)) {
					err = fmt.Errorf("unknown zone %q", z)
				} else {
					r.Zone = model.TableZone(z)
				}
			}
		case "status":
			var st string
			if st, err = asString(k, v); err == nil {
				if !model.ValidStatus(model.ReservationStatus(st)) {
					err = fmt.Errorf("unknown status %q", st)
				} else {
					r.Status = model.ReservationStatus(st)
				}
			}
		case "totalAmount":
			r.TotalAmount, err = asFloat(k, v)
		case "vip":
			r.VIP, err = asBool(k, v)
		default:
			err = fmt.Errorf("unknown field %q", k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func patchStaff(m *model.StaffMember, fields map[string]any) error {
	for k, v := range fields {
		if v == nil {
			continue
		}
		var err error
		switch k {
		case "name":
			m.Name, err = asString(k, v)
		case "role":
			m.Role, err = asString(k, v)
		case "sector":
			m.Sector, err = asString(k, v)
		case "status":
			var st string
			if st, err = asString(k, v); err == nil {
				if !model.ValidStaffStatus(model.StaffStatus(st)) {
					err = fmt.Errorf("unknown status %q", st)
				} else {
					m.Status = model.StaffStatus(st)
				}
			}
		default:
			err = fmt.Errorf("unknown field %q", k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func patchTenant(t *model.Tenant, fields map[string]any) error {
	for k, v := range fields {
		if v == nil {
			continue
		}
		var err error
		switch k {
		case "location":
			t.Location, err = asString(k, v)
		case "load":
			t.Load, err = asString(k, v)
		case "yield":
			t.Yield, err = asFloat(k, v)
		case "health":
			t.Health, err = asInt(k, v)
		case "status":
			var st string
			if st, err = asString(k, v); err == nil {
				if !model.ValidTenantStatus(model.TenantStatus(st)) {
					err = fmt.Errorf("unknown status %q", st)
				} else {
					t.Status = model.TenantStatus(st)
				}
			}
		default:
			err = fmt.Errorf("unknown field %q", k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func asString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s: cannot read %T as string", key, v)
	}
	return s, nil
}

func asInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %s: cannot read %T as int", key, v)
	}
}

func asFloat(key string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %s: cannot read %T as float", key, v)
	}
}

func asBool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %s: cannot read %T as bool", key, v)
	}
	return b, nil
}
