package songplays

import "context"

// Approver handles user interaction before the destructive reset
// (dropping and recreating every pipeline table).
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the target name for confirmation
type Approver interface {
	// RequestApproval asks for confirmation before the tables of target are dropped.
	// target names the schema and database, e.g. "analytics@dwh".
	RequestApproval(ctx context.Context, target string) (bool, error)
}
