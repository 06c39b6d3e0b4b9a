package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/sjperalta/devagency-api/internal/models"
)

// PaymentFSM wraps a payment with its state machine
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// unpaid → paid
			{Name: "pay", Src: []string{models.PaymentStatusUnpaid}, Dst: models.PaymentStatusPaid},

			// paid → unpaid (undo)
			{Name: "undo", Src: []string{models.PaymentStatusPaid}, Dst: models.PaymentStatusUnpaid},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Pay marks the payment as paid on the given date
func (p *PaymentFSM) Pay(ctx context.Context, paidOn time.Time) error {
	if !p.payment.MayPay() {
		return fmt.Errorf("payment cannot be paid in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "pay"); err != nil {
		return fmt.Errorf("failed to pay payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	p.payment.PaidDate = &paidOn
	return nil
}

// Undo reverts a paid payment to unpaid and clears its paid date
func (p *PaymentFSM) Undo(ctx context.Context) error {
	if !p.payment.MayUndo() {
		return fmt.Errorf("payment cannot be undone in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "undo"); err != nil {
		return fmt.Errorf("failed to undo payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	p.payment.PaidDate = nil
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}
