package chatview

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"mistral-chat/internal/models"
)

// Completer turns a conversation into the assistant's next reply.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

type ChangeKind int

const (
	ChangeSubmitted ChangeKind = iota + 1
	ChangeReplied
	ChangeFailed
)

// Snapshot is a copy of the view state at one point in time.
type Snapshot struct {
	Messages []models.Message
	Awaiting bool

	seq uint64
}

// Change is delivered to the observer after a state transition, unless a
// newer state has already been delivered.
type Change struct {
	Kind ChangeKind
	Snapshot
}

// View is the state of one chat window: the conversation and whether a
// completion is in flight.
type View struct {
	mu       sync.Mutex
	messages []models.Message
	seq      uint64

	// slot holds a token while a completion is outstanding.
	slot chan struct{}

	completer Completer
	locale    Locale
	log       logr.Logger
	onChange  func(Change)

	// notifyMu orders observer calls; delivered is the newest seq handed out.
	notifyMu  sync.Mutex
	delivered uint64
}

func NewView(completer Completer, locale Locale, logger logr.Logger) *View {
	return &View{
		slot:      make(chan struct{}, 1),
		completer: completer,
		locale:    locale,
		log:       logger.WithName("chatview"),
	}
}

// OnChange registers fn to be called after each state transition. It must be
// set before the first Submit.
func (v *View) OnChange(fn func(Change)) {
	v.onChange = fn
}

// Submit appends text as a user message and waits for the reply. It returns
// false without touching state when text is blank or a completion is already
// in flight.
func (v *View) Submit(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	sent, snap, ok := v.begin(models.Message{Role: models.RoleUser, Content: text})
	if !ok {
		return false
	}
	v.notify(ChangeSubmitted, snap)

	reply, err := v.completer.Complete(ctx, sent)
	if err != nil {
		v.log.Error(err, "Error")
		snap = v.finish(models.Message{Role: models.RoleAssistant, Content: v.locale.ErrorPrefix + v.errorDetail(err)})
		v.notify(ChangeFailed, snap)
		return true
	}

	snap = v.finish(models.Message{Role: models.RoleAssistant, Content: reply})
	v.notify(ChangeReplied, snap)
	return true
}

// begin takes the in-flight token and appends m. It returns a copy of the
// conversation to send and the state right after the append, or false when
// the token is already taken.
func (v *View) begin(m models.Message) ([]models.Message, Snapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	select {
	case v.slot <- struct{}{}:
	default:
		return nil, Snapshot{}, false
	}
	v.messages = append(v.messages, m)
	v.seq++
	return v.copyMessages(), v.snapshotLocked(), true
}

// finish appends the reply and hands the token back in one step.
func (v *View) finish(m models.Message) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.messages = append(v.messages, m)
	v.seq++
	<-v.slot
	return v.snapshotLocked()
}

func (v *View) errorDetail(err error) string {
	var perr *ProxyError
	if errors.As(err, &perr) && perr.Detail != "" {
		return perr.Detail
	}
	return v.locale.UnknownError
}

func (v *View) copyMessages() []models.Message {
	out := make([]models.Message, len(v.messages))
	copy(out, v.messages)
	return out
}

func (v *View) Messages() []models.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyMessages()
}

func (v *View) Awaiting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.slot) == 1
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	return Snapshot{Messages: v.copyMessages(), Awaiting: len(v.slot) == 1, seq: v.seq}
}

// notify hands snap to the observer unless a newer state was already
// delivered. A submission can begin between finish and notify of the previous
// one; its frame then already holds the reply.
func (v *View) notify(kind ChangeKind, snap Snapshot) {
	if v.onChange == nil {
		return
	}
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	if snap.seq <= v.delivered {
		return
	}
	v.delivered = snap.seq
	v.onChange(Change{Kind: kind, Snapshot: snap})
}
