package storage

import (
	"time"

	"github.com/goodtune/mstat/internal/lmstat"
)

// Snapshot is the state of one toolbox at capture time.
type Snapshot struct {
	Toolbox    string         `json:"toolbox"`
	Issued     int            `json:"issued"`
	Used       int            `json:"used"`
	Type       string         `json:"type,omitempty"`
	Users      []SnapshotUser `json:"users"`
	CapturedAt time.Time      `json:"captured_at"`
}

// SnapshotUser is a user session as it appeared in a snapshot.
type SnapshotUser struct {
	Username     string    `json:"username"`
	Start        time.Time `json:"start"`
	ElapsedHours float64   `json:"elapsed_hours"`
}

// NewSnapshots converts rendered blocks into snapshots stamped with capturedAt.
func NewSnapshots(reports []lmstat.BlockReport, capturedAt time.Time) []Snapshot {
	snapshots := make([]Snapshot, 0, len(reports))
	for _, r := range reports {
		users := make([]SnapshotUser, 0, len(r.Sessions))
		for _, s := range r.Sessions {
			users = append(users, SnapshotUser{
				Username:     s.Username,
				Start:        s.Start,
				ElapsedHours: s.ElapsedHours,
			})
		}

		snapshots = append(snapshots, Snapshot{
			Toolbox:    r.License.Toolbox,
			Issued:     r.License.Issued,
			Used:       r.License.Used,
			Type:       r.License.Type,
			Users:      users,
			CapturedAt: capturedAt,
		})
	}
	return snapshots
}

// Report converts a snapshot back into a block so it can be rendered like a
// live report. Elapsed hours are those at capture time.
func (s Snapshot) Report() lmstat.BlockReport {
	var sessions []lmstat.UserSession
	for _, u := range s.Users {
		sessions = append(sessions, lmstat.UserSession{
			Username:     u.Username,
			Start:        u.Start,
			ElapsedHours: u.ElapsedHours,
		})
	}

	return lmstat.BlockReport{
		License: lmstat.LicenseBlock{
			Toolbox: s.Toolbox,
			Issued:  s.Issued,
			Used:    s.Used,
			Type:    s.Type,
		},
		Sessions: sessions,
	}
}
