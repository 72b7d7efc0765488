package schema

// SystemAuditLogTable represents the 'system.auditlog' table
type SystemAuditLogTable struct {
	Table     string
	ID        string
	ActorID   string
	Action    string
	Target    string
	Details   string
	CreatedAt string
}

var SystemAuditLog = SystemAuditLogTable{
	Table:     "system.auditlog",
	ID:        "id",
	ActorID:   "actorid",
	Action:    "action",
	Target:    "target",
	Details:   "details",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t SystemAuditLogTable) Columns() []string {
	return []string{
		t.ID, t.ActorID, t.Action, t.Target, t.Details, t.CreatedAt,
	}
}
