// Package roster loads and serves the driver directory: the authoritative,
// immutable list of staff eligible to sign against a record.
//
// Roster files are CUE, validated against the embedded schema (schema.cue)
// plus Go-side semantic checks (duplicate staff numbers, blank fields) that
// CUE constraints cannot express cleanly. The directory is supplied by the
// hosting environment and is read-only to the rest of the system.
package roster

import "github.com/roach88/signoff/internal/record"

// Roster is the driver directory. Immutable after Load: lookups never
// mutate, and Drivers returns a copy so callers cannot either.
type Roster struct {
	drivers []record.Driver
	byStaff map[string]record.Driver
}

// Lookup returns the driver registered under staffNumber.
func (r *Roster) Lookup(staffNumber string) (record.Driver, bool) {
	d, ok := r.byStaff[staffNumber]
	return d, ok
}

// Drivers returns all drivers in declaration order.
func (r *Roster) Drivers() []record.Driver {
	out := make([]record.Driver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// Len returns the number of registered drivers.
func (r *Roster) Len() int {
	return len(r.drivers)
}
