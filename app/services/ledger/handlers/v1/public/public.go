// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kestrellabs/recordchain/business/sys/validate"
	"github.com/kestrellabs/recordchain/business/web/errs"
	"github.com/kestrellabs/recordchain/foundation/chain/database"
	"github.com/kestrellabs/recordchain/foundation/chain/record"
	"github.com/kestrellabs/recordchain/foundation/chain/state"
	"github.com/kestrellabs/recordchain/foundation/events"
	"github.com/kestrellabs/recordchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitRecord adds a new record to the intake queue for mining.
func (h Handlers) SubmitRecord(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nr newRecord
	if err := web.Decode(r, &nr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	if err := validate.Check(nr); err != nil {
		return err
	}

	rec, err := record.FromMap(nr.Fields)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add record", "traceid", v.TraceID, "record", rec.Canonical())
	if err := h.State.SubmitRecord(rec); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}{
		Status:  "record added to the intake queue",
		Pending: h.State.QueryIntakeLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Intake returns the set of records waiting to be mined.
func (h Handlers) Intake(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	records := h.State.RetrieveIntake()
	return web.Respond(ctx, w, records, http.StatusOK)
}

// Latest returns a summary of the current tip of the chain.
func (h Handlers) Latest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock()

	t := tip{
		Number:    latest.Header.Number,
		Hash:      latest.Hash,
		Nonce:     latest.Header.Nonce,
		TimeStamp: latest.Header.TimeStamp,
	}

	return web.Respond(ctx, w, t, http.StatusOK)
}

// BlocksByNumber returns the blocks in the specified range, where the
// literal "latest" selects the current tip.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	if fromStr == "latest" || fromStr == "" {
		fromStr = strconv.FormatUint(state.QueryLatest, 10)
	}

	toStr := web.Param(r, "to")
	if toStr == "latest" || toStr == "" {
		toStr = strconv.FormatUint(state.QueryLatest, 10)
	}

	from, err := strconv.ParseUint(fromStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := strconv.ParseUint(toStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	dbBlocks := h.State.QueryBlocksByNumber(from, to)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toAPIBlocks(dbBlocks), http.StatusOK)
}

// BlocksByField returns the blocks whose payload carries the specified
// field name and value.
func (h Handlers) BlocksByField(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	name := web.Param(r, "name")
	value := web.Param(r, "value")

	dbBlocks := h.State.QueryBlocksByField(name, value)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toAPIBlocks(dbBlocks), http.StatusOK)
}

// Validate walks the whole chain and reports the first failing block and
// check, if any.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	vd := verdict{Valid: true}

	if err := h.State.ValidateChain(); err != nil {
		vd.Valid = false
		vd.Reason = err.Error()

		var blockErr *database.BlockError
		if errors.As(err, &blockErr) {
			vd.Block = blockErr.Number
			vd.Reason = blockErr.Err.Error()
		}
	}

	return web.Respond(ctx, w, vd, http.StatusOK)
}

// =============================================================================

// toAPIBlocks converts database blocks into their API form.
func toAPIBlocks(dbBlocks []database.Block) []block {
	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = block{
			Number:        blk.Header.Number,
			PrevBlockHash: blk.Header.PrevBlockHash,
			TimeStamp:     blk.Header.TimeStamp,
			Nonce:         blk.Header.Nonce,
			Hash:          blk.Hash,
			Payload:       blk.Payload,
		}
	}

	return blocks
}
