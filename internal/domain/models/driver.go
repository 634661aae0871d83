package models

// Driver mirrors the conductores schema. The table also holds admins and
// mechanics; only active rows with a driver role are assignment candidates.
type Driver struct {
	ID      int64  `json:"id"`
	Code    string `json:"codigo"`
	Name    string `json:"nombre"`
	Surname string `json:"apellidos"`
	Email   string `json:"email"`
	License string `json:"licencia"`
	Role    string `json:"rol"`
	Active  bool   `json:"activo"`
}

// IsCandidate reports whether the driver is eligible for assignment. Legacy
// rows use either "conductor" or "driver" for the role.
func (d Driver) IsCandidate() bool {
	return d.Active && (d.Role == "conductor" || d.Role == "driver")
}
