// Package abuse escalates repeated rate limit violations into time-boxed blocks.
//
// Every denied request is reported with RecordViolation. Violations are
// counted per identity within a detection window; when the count reaches the
// threshold the identity is blocked until now+BlockDuration and its
// violation history is cleared. A window that elapses without escalation
// starts counting from zero again.
//
//	det, err := abuse.New(abuse.Config{
//		Threshold:     10,
//		Window:        time.Hour,
//		BlockDuration: time.Hour,
//	})
//	if err != nil {
//		return err
//	}
//	defer det.Close()
//
//	if b, blocked := det.Blocked(ctx, key); blocked {
//		// deny, b.Reason and b.BlockedUntil explain why and until when
//	}
//
// Blocks expire lazily: an expired block is treated as absent and removed
// on the next lookup. WithCleanupInterval adds a background sweep that only
// reclaims memory and never changes a decision.
package abuse
