package preferences

import "time"

// SetClock подменяет часы реестра в тестах.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }
