package store

import (
	"strings"
	"time"

	"pulse-backend/internal/model"
)

// Derived views are pure functions over collection snapshots; none of them
// touch the store's mutable state.

// DayRevenue is one weekday bucket of the revenue aggregation.
type DayRevenue struct {
	Day     string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

var weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekdayRevenue buckets committed amounts of non-voided reservations by the
// weekday of their booking date, zero-filled Sun through Sat. Reservations
// with an unparseable date contribute to no bucket.
func WeekdayRevenue(reservations []model.Reservation) []DayRevenue {
	var totals [7]float64
	for _, r := range reservations {
		if r.Status == model.StatusVoided {
			continue
		}
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		totals[int(d.Weekday())] += r.TotalAmount
	}

	out := make([]DayRevenue, 7)
	for i, name := range weekdays {
		out[i] = DayRevenue{Day: name, Revenue: totals[i]}
	}
	return out
}

// Occupancy is the venue load derived from checked-in reservations.
type Occupancy struct {
	CheckedIn int  `json:"checkedIn"`
	Percent   int  `json:"percent"`
	Critical  bool `json:"critical"`
}

// ComputeOccupancy derives venue load from the checked-in count against a
// fixed capacity. The critical flag trips when the floored percentage meets
// the threshold fraction of capacity.
func ComputeOccupancy(reservations []model.Reservation, capacity int, threshold float64) Occupancy {
	checkedIn := 0
	for _, r := range reservations {
		if r.Status == model.StatusCheckedIn {
			checkedIn++
		}
	}
	occ := Occupancy{CheckedIn: checkedIn}
	if capacity > 0 {
		occ.Percent = checkedIn * 100 / capacity
	}
	occ.Critical = occ.Percent >= int(threshold*100)
	return occ
}

// FilterReservations returns reservations whose name, assigned table, email,
// or identifier contains the query, case-insensitively. An empty query
// matches everything.
func FilterReservations(reservations []model.Reservation, query string) []model.Reservation {
	q := strings.ToLower(query)
	out := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if q == "" ||
			strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Table), q) ||
			strings.Contains(strings.ToLower(r.Email), q) ||
			strings.Contains(strings.ToLower(r.ID), q) {
			out = append(out, r)
		}
	}
	return out
}

// FilterStaff returns staff whose name or role contains the query,
// optionally restricted to an exact sector match. Pass sector "" (or "All")
// for no sector restriction.
func FilterStaff(staff []model.StaffMember, query, sector string) []model.StaffMember {
	q := strings.ToLower(query)
	out := make([]model.StaffMember, 0, len(staff))
	for _, m := range staff {
		if sector != "" && sector != "All" && m.Sector != sector {
			continue
		}
		if q == "" ||
			strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Role), q) {
			out = append(out, m)
		}
	}
	return out
}

// ZoneRevenue is one sector slice of the allocation breakdown.
type ZoneRevenue struct {
	Zone  model.TableZone `json:"name"`
	Value float64         `json:"value"`
}

// ZoneAllocation totals committed amounts of non-voided reservations per
// zone, in first-seen order.
func ZoneAllocation(reservations []model.Reservation) []ZoneRevenue {
	var out []ZoneRevenue
	index := make(map[model.TableZone]int)
	for _, r := range reservations {
		if r.Status == model.StatusVoided {
			continue
		}
		if i, ok := index[r.Zone]; ok {
			out[i].Value += r.TotalAmount
		} else {
			index[r.Zone] = len(out)
			out = append(out, ZoneRevenue{Zone: r.Zone, Value: r.TotalAmount})
		}
	}
	return out
}

// Stats is the fleet-level dashboard summary.
type Stats struct {
	GlobalRevenue float64 `json:"globalRevenue"`
	TotalBookings int     `json:"totalBookings"`
	PendingCount  int     `json:"pendingCount"`
	ActiveTenants int     `json:"activeTenants"`
}

// GlobalStats summarizes reservations and tenants for the command view.
func GlobalStats(reservations []model.Reservation, tenants []model.Tenant) Stats {
	st := Stats{TotalBookings: len(reservations)}
	for _, r := range reservations {
		if r.Status != model.StatusVoided {
			st.GlobalRevenue += r.TotalAmount
		}
		if r.Status == model.StatusPending {
			st.PendingCount++
		}
	}
	for _, t := range tenants {
		if t.Status == model.TenantActive {
			st.ActiveTenants++
		}
	}
	return st
}
