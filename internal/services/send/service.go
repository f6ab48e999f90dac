package send

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
	"zkl/internal/inbox"
	"zkl/internal/metrics"
)

// Options tune retries and durability.
type Options struct {
	// MaxAttempts bounds every retried call, first attempt included.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// SubmitTimeout bounds a ledger write once it has been started.
	SubmitTimeout time.Duration
	// Pin requests pinning of published content.
	Pin bool
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 5
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = 200 * time.Millisecond
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = 5 * time.Second
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = 30 * time.Second
	}
	return o
}

// Deps are the collaborators of a Service. Relay may be nil when only the
// home chain is used; Journal may be nil to disable resumption.
type Deps struct {
	Home     domain.ChainID
	Registry domain.RegistryClient
	Content  domain.ContentStore
	Relay    domain.RelayClient
	Inbox    domain.InboxWriter
	Journal  domain.SendJournal
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

// Service orchestrates sends. It holds no per-send state, so concurrent
// sends are independent.
type Service struct {
	Deps
	opts Options
	now  func() time.Time
}

// New returns a send Service.
func New(d Deps, opts Options) *Service {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Service{Deps: d, opts: opts.withDefaults(), now: time.Now}
}

// run is the mutable state of one send.
type run struct {
	sender  domain.Identity
	req     domain.SendRequest
	entry   domain.SendJournalEntry
	effects SideEffects
	result  domain.SendResult
	log     *slog.Logger

	recipientKey domain.X25519Public
}

// Send encrypts req.Plaintext to the recipient, publishes it and appends
// the pointer record to the recipient's inbox on the home chain, relaying
// it to req.Destination first when that is another chain.
func (s *Service) Send(ctx context.Context, sender domain.Identity, req domain.SendRequest) (res domain.SendResult, err error) {
	start := s.now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperr.CodeOf(err))
		}
		s.Metrics.Send(outcome, s.now().Sub(start))
	}()

	if len(req.Plaintext) == 0 {
		return domain.SendResult{}, &StageError{Stage: domain.StageResolveRecipient, Err: apperr.InvalidInput("nothing to send")}
	}
	r, err := s.begin(sender, req)
	if err != nil {
		return domain.SendResult{}, &StageError{Stage: domain.StageResolveRecipient, Err: err}
	}

	steps := []struct {
		stage domain.SendStage
		fn    func(context.Context, *run) error
	}{
		{domain.StageResolveRecipient, s.resolve},
		{domain.StageEncrypt, s.encryptAndPublish},
		{domain.StagePin, s.pin},
		{domain.StageRelayAttest, s.attest},
		{domain.StageRelayDeliver, s.deliver},
		{domain.StageInboxAppend, s.append},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return domain.SendResult{}, s.fail(r, step.stage, err)
		}
		if err := step.fn(ctx, r); err != nil {
			var se *StageError
			if errors.As(err, &se) {
				return domain.SendResult{}, s.fail(r, se.Stage, se.Err)
			}
			return domain.SendResult{}, s.fail(r, step.stage, err)
		}
	}

	if s.Journal != nil {
		if err := s.Journal.Delete(r.entry.Key); err != nil {
			r.log.Warn("send journal cleanup failed", "err", err)
		}
	}
	r.log.Info("send complete", "cid", r.result.ContentID, "inbox", r.result.InboxAddress, "duplicate", r.result.Duplicate)
	s.Metrics.Stage(string(domain.StageDone), "ok")
	return r.result, nil
}

func (s *Service) fail(r *run, stage domain.SendStage, err error) error {
	s.Metrics.Stage(string(stage), string(apperr.CodeOf(err)))
	r.log.Warn("send failed", "stage", stage, "err", err, "side_effects", r.effects.String())
	return &StageError{Stage: stage, Err: err, SideEffects: r.effects}
}

// begin loads or creates the journal entry for req.
func (s *Service) begin(sender domain.Identity, req domain.SendRequest) (*run, error) {
	key := JournalKey(req)
	entry := domain.SendJournalEntry{
		ID:        uuid.NewString(),
		Key:       key,
		Recipient: req.Recipient,
		Stage:     domain.StageResolveRecipient,
	}
	if s.Journal != nil {
		prev, ok, err := s.Journal.Get(key)
		if err != nil {
			return nil, fmt.Errorf("send journal: %w", err)
		}
		if ok {
			entry = prev
		}
	}
	r := &run{
		sender: sender,
		req:    req,
		entry:  entry,
		log:    s.Log.With("send_id", entry.ID, "recipient", req.Recipient, "index", req.RecipientIndex),
	}
	r.result.ID = entry.ID
	if entry.Stage != domain.StageResolveRecipient {
		r.log.Info("resuming send", "stage", entry.Stage)
	}
	if entry.ContentID != "" {
		r.effects.Published = true
		r.effects.ContentID = entry.ContentID
	}
	if entry.Attestation != nil {
		r.effects.Attested = true
		r.effects.Sequence = entry.Attestation.Sequence
	}
	return r, nil
}

// JournalKey identifies a send for resumption: the same file to the same
// inbox over the same route.
func JournalKey(req domain.SendRequest) string {
	digest := sha256.Sum256(req.Plaintext)
	h := sha256.New()
	h.Write(digest[:])
	h.Write(req.Recipient[:])
	var tail [6]byte
	binary.LittleEndian.PutUint32(tail[:4], req.RecipientIndex)
	binary.LittleEndian.PutUint16(tail[4:], uint16(req.Destination))
	h.Write(tail[:])
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Service) checkpoint(r *run, stage domain.SendStage) {
	r.entry.Stage = stage
	if s.Journal == nil {
		return
	}
	if err := s.Journal.Put(r.entry); err != nil {
		r.log.Warn("send journal write failed", "stage", stage, "err", err)
	}
}

// resolve looks up the recipient key and checks that its inbox can take a
// message before anything is published.
func (s *Service) resolve(ctx context.Context, r *run) error {
	var key domain.X25519Public
	err := s.retry(ctx, r, domain.StageResolveRecipient, func(ctx context.Context) error {
		var err error
		key, err = s.Registry.Resolve(ctx, r.req.Recipient, r.req.RecipientIndex)
		return err
	})
	if err != nil {
		return err
	}
	r.result.InboxAddress, _, err = s.Inbox.DeriveAddress(r.req.Recipient, r.req.RecipientIndex)
	if err != nil {
		return err
	}

	var acc domain.InboxAccount
	err = s.retry(ctx, r, domain.StageResolveRecipient, func(ctx context.Context) error {
		var err error
		acc, err = s.Inbox.Fetch(ctx, r.req.Recipient, r.req.RecipientIndex)
		return err
	})
	if err != nil {
		return err
	}
	if acc.Full() && (r.entry.Record == nil || !acc.Contains(r.entry.Record.EncryptedLink)) {
		return apperr.With(apperr.ErrInboxFull, fmt.Errorf("inbox %s holds %d messages; use index %d", acc.Address, len(acc.Messages), inbox.NextShard(r.req.RecipientIndex)))
	}
	if acc.RecipientKey != domain.EncodeX25519(key) {
		return apperr.InvalidInput(fmt.Sprintf("inbox %s key does not match the registry", acc.Address))
	}
	r.recipientKey = key
	s.Metrics.Stage(string(domain.StageResolveRecipient), "ok")
	return nil
}

// encryptAndPublish covers Encrypt, Publish and BuildRecord. A resumed send
// that already built its record skips all three.
func (s *Service) encryptAndPublish(ctx context.Context, r *run) error {
	if r.entry.Record != nil {
		r.result.ContentID = r.entry.ContentID
		r.result.Record = *r.entry.Record
		return nil
	}

	ciphertext, ephemeral, err := crypto.Encrypt(r.recipientKey, r.req.Plaintext)
	if err != nil {
		return &StageError{Stage: domain.StageEncrypt, Err: err}
	}
	s.Metrics.Stage(string(domain.StageEncrypt), "ok")

	if err := ctx.Err(); err != nil {
		return &StageError{Stage: domain.StagePublish, Err: err}
	}
	var cid string
	err = s.retry(ctx, r, domain.StagePublish, func(ctx context.Context) error {
		var err error
		cid, err = s.Content.Add(ctx, ciphertext)
		return err
	})
	if errors.Is(err, apperr.ErrUnavailable) {
		err = apperr.With(apperr.ErrPublishUnavailable, err)
	}
	if err != nil {
		return &StageError{Stage: domain.StagePublish, Err: err}
	}
	r.effects.Published = true
	r.effects.ContentID = cid
	r.entry.ContentID = cid
	r.result.ContentID = cid
	s.Metrics.Stage(string(domain.StagePublish), "ok")
	r.log.Info("ciphertext published", "cid", cid, "bytes", len(ciphertext))

	record, err := domain.NewFileTxRecord(
		domain.EncodeX25519(r.sender.EncryptionPublic).Slice(),
		cid,
		ephemeral.Slice(),
		uint64(s.now().UnixMilli()),
	)
	if err != nil {
		return &StageError{Stage: domain.StageBuildRecord, Err: apperr.Internal("build record", err)}
	}
	r.entry.Record = &record
	r.result.Record = record
	s.Metrics.Stage(string(domain.StageBuildRecord), "ok")
	s.checkpoint(r, domain.StagePin)
	return nil
}

// pin is best-effort: failures are logged and the send continues.
func (s *Service) pin(ctx context.Context, r *run) error {
	if !s.opts.Pin {
		return nil
	}
	err := s.retry(ctx, r, domain.StagePin, func(ctx context.Context) error {
		return s.Content.Pin(ctx, r.result.ContentID)
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		s.Metrics.Stage(string(domain.StagePin), string(apperr.CodeOf(err)))
		r.log.Warn("pin failed; content stays published unpinned", "cid", r.result.ContentID, "err", err)
		return nil
	}
	r.result.Pinned = true
	s.Metrics.Stage(string(domain.StagePin), "ok")
	return nil
}

func (s *Service) relayed(r *run) bool {
	d := r.req.Destination
	return d != 0 && d != s.Home
}

func (s *Service) attest(ctx context.Context, r *run) error {
	if !s.relayed(r) {
		if r.req.Destination != 0 {
			r.log.Info("destination is the home chain; relay skipped", "chain", r.req.Destination)
		}
		return nil
	}
	if s.Relay == nil {
		return apperr.With(apperr.ErrRelayRejected, fmt.Errorf("no relay configured for chain %d", r.req.Destination))
	}
	if r.entry.Attestation != nil {
		r.result.Relay = r.entry.Attestation
		return nil
	}

	if r.entry.AttestTx == nil {
		tx, err := s.Relay.PrepareAttest(r.sender, inbox.EncodeRecord(*r.entry.Record))
		if err != nil {
			return err
		}
		r.entry.AttestTx = &tx
		s.checkpoint(r, domain.StageRelayAttest)
	}
	var h domain.AttestationHandle
	err := s.retry(ctx, r, domain.StageRelayAttest, func(ctx context.Context) error {
		sctx, cancel := s.submitContext(ctx)
		defer cancel()
		var err error
		h, err = s.Relay.SubmitAttest(sctx, *r.entry.AttestTx)
		return err
	})
	if err != nil {
		return err
	}
	r.effects.Attested = true
	r.effects.Sequence = h.Sequence
	r.entry.Attestation = &h
	r.result.Relay = &h
	s.Metrics.Stage(string(domain.StageRelayAttest), "ok")
	s.checkpoint(r, domain.StageRelayDeliver)
	return nil
}

// deliver waits for the attestation and submits it on the destination.
// The relay state on the journaled handle follows every transition.
func (s *Service) deliver(ctx context.Context, r *run) error {
	if !s.relayed(r) || r.entry.Delivered {
		return nil
	}
	h := r.entry.Attestation
	r.result.Relay = h
	env, err := s.Relay.Await(ctx, h)
	if err != nil {
		s.checkpoint(r, domain.StageRelayDeliver)
		return err
	}
	if !bytes.Equal(env.Envelope.Payload, inbox.EncodeRecord(*r.entry.Record)) {
		h.State = domain.RelayFailed
		s.checkpoint(r, domain.StageRelayDeliver)
		return apperr.With(apperr.ErrRelayRejected, fmt.Errorf("attested payload for %s does not match the record", h))
	}
	s.checkpoint(r, domain.StageRelayDeliver)
	err = s.retry(ctx, r, domain.StageRelayDeliver, func(ctx context.Context) error {
		sctx, cancel := s.submitContext(ctx)
		defer cancel()
		return s.Relay.Deliver(sctx, r.sender, r.req.Destination, h, env)
	})
	if err != nil {
		s.checkpoint(r, domain.StageRelayDeliver)
		return err
	}
	r.entry.Delivered = true
	s.Metrics.Stage(string(domain.StageRelayDeliver), "ok")
	s.checkpoint(r, domain.StageInboxAppend)
	return nil
}

// append writes the record unless the inbox already holds its link. A
// stale expected count re-fetches and retries.
func (s *Service) append(ctx context.Context, r *run) error {
	record := *r.entry.Record
	err := s.retry(ctx, r, domain.StageInboxAppend, func(ctx context.Context) error {
		acc, err := s.Inbox.Fetch(ctx, r.req.Recipient, r.req.RecipientIndex)
		if err != nil {
			return err
		}
		if acc.Contains(record.EncryptedLink) {
			r.result.Duplicate = true
			r.log.Info("inbox already holds this link; not appending", "cid", record.EncryptedLink)
			return nil
		}
		if acc.Full() {
			return apperr.With(apperr.ErrInboxFull, fmt.Errorf("inbox %s is full; use index %d", acc.Address, inbox.NextShard(r.req.RecipientIndex)))
		}
		sctx, cancel := s.submitContext(ctx)
		defer cancel()
		return s.Inbox.Append(sctx, r.sender, r.req.Recipient, r.req.RecipientIndex, record, uint32(len(acc.Messages)))
	})
	if err != nil {
		return err
	}
	if !r.result.Duplicate {
		r.effects.Appended = true
	}
	r.entry.Appended = true
	s.Metrics.Stage(string(domain.StageInboxAppend), "ok")
	s.checkpoint(r, domain.StageDone)
	return nil
}

// submitContext detaches a ledger write from caller cancellation so that
// it is never abandoned halfway, bounding it by SubmitTimeout instead.
func (s *Service) submitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opts.SubmitTimeout)
}

// retry runs op until it succeeds, fails permanently, or exhausts
// MaxAttempts. Exhaustion is reported as apperr.ErrUnavailable.
func (s *Service) retry(ctx context.Context, r *run, stage domain.SendStage, op func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.InitialInterval
	b.MaxInterval = s.opts.MaxInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.opts.MaxAttempts-1)), ctx)

	err := backoff.RetryNotify(func() error {
		err := op(ctx)
		if err == nil || apperr.Retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		s.Metrics.Retry(string(stage))
		r.log.Debug("retrying", "stage", stage, "wait", wait, "err", err)
	})
	if err != nil && apperr.Retryable(err) && ctx.Err() == nil {
		return apperr.With(apperr.ErrUnavailable, err)
	}
	return err
}

var _ domain.SendService = (*Service)(nil)
