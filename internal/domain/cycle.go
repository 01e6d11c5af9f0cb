package domain

import "time"

// CyclePolicy length of a treatment cycle
type CyclePolicy struct {
	SessionsPerCycle int
	CycleDays        int
}

// DefaultCyclePolicy 18 sessions within 42 days
func DefaultCyclePolicy() CyclePolicy {
	return CyclePolicy{SessionsPerCycle: DefaultSessionsPerCycle, CycleDays: DefaultCycleDays}
}

// CycleProgress counter as read back from the patient registry
type CycleProgress struct {
	PatientID         int64
	CompletedSessions int
	CycleStartedAt    time.Time
}

// CycleNotice informational signal returned after an appointment completes
type CycleNotice struct {
	PatientID         int64
	CompletedSessions int
	SessionsPerCycle  int
	RemainingSessions int
	CycleComplete     bool
}

// Notice evaluates progress against the policy
func (p CyclePolicy) Notice(progress CycleProgress, now time.Time) *CycleNotice {
	remaining := p.SessionsPerCycle - progress.CompletedSessions
	if remaining < 0 {
		remaining = 0
	}

	withinWindow := true
	if p.CycleDays > 0 && !progress.CycleStartedAt.IsZero() {
		withinWindow = !now.After(progress.CycleStartedAt.AddDate(0, 0, p.CycleDays))
	}

	return &CycleNotice{
		PatientID:         progress.PatientID,
		CompletedSessions: progress.CompletedSessions,
		SessionsPerCycle:  p.SessionsPerCycle,
		RemainingSessions: remaining,
		CycleComplete:     progress.CompletedSessions >= p.SessionsPerCycle && withinWindow,
	}
}
