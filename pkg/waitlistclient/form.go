package waitlistclient

import (
	"context"
	"errors"
	"sync"
)

type FormState int

const (
	Idle FormState = iota
	Pending
	Success
	Error
)

func (s FormState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

const (
	SubmitLabel        = "Join Waitlist"
	SubmitPendingLabel = "Joining..."
)

var ErrSubmissionInFlight = errors.New("waitlist submission already in flight")

// Submitter is the part of Client the form needs.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (string, error)
}

// Form is the landing page signup form. At most one submission is in flight.
type Form struct {
	submitter Submitter

	mu      sync.Mutex
	state   FormState
	email   string
	message string
}

func NewForm(submitter Submitter) *Form {
	return &Form{submitter: submitter}
}

// SetEmail edits the field. Editing after a result returns the form to Idle.
func (f *Form) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Pending {
		return
	}
	f.email = email
	if f.state == Success || f.state == Error {
		f.state = Idle
		f.message = ""
	}
}

// Submit sends the current email. The call blocks until the server answers.
func (f *Form) Submit(ctx context.Context, sub Submission) error {
	f.mu.Lock()
	if f.state == Pending {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	f.state = Pending
	f.message = ""
	sub.Email = f.email
	f.mu.Unlock()

	message, err := f.submitter.Submit(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = Error
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			f.message = apiErr.Message
		} else {
			f.message = NetworkErrorMessage
		}
		return err
	}

	f.state = Success
	f.message = message
	f.email = ""
	return nil
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// SubmitEnabled is false while a submission is in flight.
func (f *Form) SubmitEnabled() bool {
	return f.State() != Pending
}

func (f *Form) SubmitLabel() string {
	if f.State() == Pending {
		return SubmitPendingLabel
	}
	return SubmitLabel
}
