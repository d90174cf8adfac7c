package ledger

import (
	"fmt"
	"math"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// Reconcile matches the given move lines against each other, recording
// partial reconciliations between open debit and credit residuals and
// flagging lines as reconciled once their residual reaches zero at company
// currency precision.
func (q *queries) Reconcile(lineIDs []int64) error {
	lines, err := q.MoveLinesByIDs(lineIDs)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	company, err := q.Company(lines[0].CompanyID)
	if err != nil {
		return err
	}

	var debits, credits []*model.MoveLine
	for i := range lines {
		line := &lines[i]
		if q.currencies.IsZero(company.CurrencyID, line.AmountResidual) {
			continue
		}
		if line.AmountResidual > 0 {
			debits = append(debits, line)
		} else {
			credits = append(credits, line)
		}
	}

	for _, debit := range debits {
		for _, credit := range credits {
			if q.currencies.IsZero(company.CurrencyID, debit.AmountResidual) {
				break
			}
			if q.currencies.IsZero(company.CurrencyID, credit.AmountResidual) {
				continue
			}
			amount := math.Min(debit.AmountResidual, -credit.AmountResidual)
			partial := model.PartialReconcile{
				DebitLineID:  debit.ID,
				CreditLineID: credit.ID,
				Amount:       amount,
			}
			if debit.CurrencyID == credit.CurrencyID && debit.CurrencyID != company.CurrencyID {
				// Both sides share a foreign currency: match the currency
				// residuals directly, so a pure rate difference settles the
				// currency leg and leaves only a company-currency leftover.
				matched := math.Min(debit.AmountResidualCurrency, -credit.AmountResidualCurrency)
				partial.DebitAmountCurrency = matched
				partial.CreditAmountCurrency = matched
			} else {
				partial.DebitAmountCurrency = currencyShare(debit, amount)
				partial.CreditAmountCurrency = currencyShare(credit, amount)
			}
			if err := q.insertPartial(&partial); err != nil {
				return err
			}
			if err := q.applyPartial(company.CurrencyID, debit, amount, -partial.DebitAmountCurrency); err != nil {
				return err
			}
			if err := q.applyPartial(company.CurrencyID, credit, -amount, partial.CreditAmountCurrency); err != nil {
				return err
			}
		}
	}

	if company.CurrencyExchangeJournalID == 0 {
		return nil
	}
	for _, line := range append(debits, credits...) {
		if err := q.settleExchangeDifference(company, line); err != nil {
			return err
		}
	}
	return nil
}

// settleExchangeDifference closes a line whose foreign-currency residual is
// settled while a company-currency residual remains. The leftover is a
// realized exchange gain or loss: it is posted on its own entry in the
// exchange journal and the entry's balancing line is reconciled against the
// open line.
func (q *queries) settleExchangeDifference(company *model.Company, line *model.MoveLine) error {
	if line.CurrencyID == company.CurrencyID ||
		!q.currencies.IsZero(line.CurrencyID, line.AmountResidualCurrency) ||
		q.currencies.IsZero(company.CurrencyID, line.AmountResidual) {
		return nil
	}

	residual := line.AmountResidual
	accountID := company.ExpenseCurrencyExchangeAccountID
	if residual < 0 {
		accountID = company.IncomeCurrencyExchangeAccountID
	}

	move := &model.Move{
		CompanyID: company.ID,
		JournalID: company.CurrencyExchangeJournalID,
		Date:      line.Date,
		Ref:       "Exchange difference",
		State:     model.MoveStatePosted,
	}
	if _, err := q.CreateMove(move); err != nil {
		return err
	}

	// The balancing leg mirrors the open line; its currency leg is already
	// settled, so it carries no currency amount.
	balancing := &model.MoveLine{
		MoveID:     move.ID,
		CompanyID:  company.ID,
		AccountID:  line.AccountID,
		PartnerID:  line.PartnerID,
		Date:       line.Date,
		Name:       move.Ref,
		CurrencyID: line.CurrencyID,
	}
	gainLoss := &model.MoveLine{
		MoveID:         move.ID,
		CompanyID:      company.ID,
		AccountID:      accountID,
		PartnerID:      line.PartnerID,
		Date:           line.Date,
		Name:           move.Ref,
		CurrencyID:     company.CurrencyID,
		AmountCurrency: residual,
	}
	if residual < 0 {
		balancing.Debit = -residual
		gainLoss.Credit = -residual
	} else {
		balancing.Credit = residual
		gainLoss.Debit = residual
	}
	if _, err := q.CreateMoveLine(balancing); err != nil {
		return err
	}
	if _, err := q.CreateMoveLine(gainLoss); err != nil {
		return err
	}

	partial := model.PartialReconcile{
		Amount:         math.Abs(residual),
		ExchangeMoveID: move.ID,
	}
	if residual > 0 {
		partial.DebitLineID = line.ID
		partial.CreditLineID = balancing.ID
	} else {
		partial.DebitLineID = balancing.ID
		partial.CreditLineID = line.ID
	}
	if err := q.insertPartial(&partial); err != nil {
		return err
	}
	debit, err := q.MoveLine(partial.DebitLineID)
	if err != nil {
		return err
	}
	credit, err := q.MoveLine(partial.CreditLineID)
	if err != nil {
		return err
	}
	if err := q.applyPartial(company.CurrencyID, debit, partial.Amount, 0); err != nil {
		return err
	}
	if err := q.applyPartial(company.CurrencyID, credit, -partial.Amount, 0); err != nil {
		return err
	}
	line.AmountResidual = 0
	line.Reconciled = true
	return nil
}

// currencyShare converts a company-currency partial amount into the line's
// own currency, proportionally to the line totals.
func currencyShare(line *model.MoveLine, amount float64) float64 {
	balance := line.Balance()
	if balance == 0 {
		return amount
	}
	return math.Abs(amount * line.AmountCurrency / balance)
}

func (q *queries) insertPartial(p *model.PartialReconcile) error {
	res, err := q.db.Exec(`
		INSERT INTO partial_reconcile
			(debit_line_id, credit_line_id, amount,
			 debit_amount_currency, credit_amount_currency, exchange_move_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.DebitLineID, p.CreditLineID, p.Amount,
		p.DebitAmountCurrency, p.CreditAmountCurrency, p.ExchangeMoveID,
	)
	if err != nil {
		return fmt.Errorf("failed to create partial reconcile: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get partial reconcile id: %w", err)
	}
	return nil
}

// applyPartial reduces a line residual by the matched amount and refreshes
// its reconciled flag.
func (q *queries) applyPartial(companyCurrencyID int64, line *model.MoveLine, amount, currencyAmount float64) error {
	line.AmountResidual -= amount
	line.AmountResidualCurrency += currencyAmount
	line.Reconciled = q.currencies.IsZero(companyCurrencyID, line.AmountResidual)
	_, err := q.db.Exec(`
		UPDATE move_lines
		SET amount_residual = ?, amount_residual_currency = ?, reconciled = ?
		WHERE id = ?`,
		line.AmountResidual, line.AmountResidualCurrency, line.Reconciled, line.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update line residual: %w", err)
	}
	return nil
}

// MatchedPartials lists the partial reconciliations touching a line, on
// either the debit or the credit side.
func (q *queries) MatchedPartials(lineID int64) ([]model.PartialReconcile, error) {
	rows, err := q.db.Query(`
		SELECT id, debit_line_id, credit_line_id, amount,
			debit_amount_currency, credit_amount_currency, exchange_move_id
		FROM partial_reconcile
		WHERE debit_line_id = ? OR credit_line_id = ?
		ORDER BY id`, lineID, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partials: %w", err)
	}
	defer rows.Close()

	var partials []model.PartialReconcile
	for rows.Next() {
		var p model.PartialReconcile
		if err := rows.Scan(&p.ID, &p.DebitLineID, &p.CreditLineID, &p.Amount,
			&p.DebitAmountCurrency, &p.CreditAmountCurrency, &p.ExchangeMoveID); err != nil {
			return nil, fmt.Errorf("failed to scan partial: %w", err)
		}
		partials = append(partials, p)
	}
	return partials, nil
}

// UnlinkPartialsForLines removes every partial reconciliation touching the
// given lines and restores the residuals on both sides of each removed link.
func (q *queries) UnlinkPartialsForLines(lineIDs []int64) error {
	seen := map[int64]bool{}
	for _, lineID := range lineIDs {
		partials, err := q.MatchedPartials(lineID)
		if err != nil {
			return err
		}
		for _, p := range partials {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			if err := q.unlinkPartial(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (q *queries) unlinkPartial(p model.PartialReconcile) error {
	debit, err := q.MoveLine(p.DebitLineID)
	if err != nil {
		return err
	}
	credit, err := q.MoveLine(p.CreditLineID)
	if err != nil {
		return err
	}
	company, err := q.Company(debit.CompanyID)
	if err != nil {
		return err
	}
	if _, err := q.db.Exec(`DELETE FROM partial_reconcile WHERE id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to delete partial: %w", err)
	}
	if err := q.applyPartial(company.CurrencyID, debit, -p.Amount, p.DebitAmountCurrency); err != nil {
		return err
	}
	if err := q.applyPartial(company.CurrencyID, credit, p.Amount, -p.CreditAmountCurrency); err != nil {
		return err
	}
	if p.ExchangeMoveID != 0 {
		return q.dropExchangeMove(p.ExchangeMoveID)
	}
	return nil
}

// dropExchangeMove removes a generated exchange difference entry once the
// reconciliation that produced it is undone.
func (q *queries) dropExchangeMove(moveID int64) error {
	lines, err := q.MoveLines(moveID)
	if err != nil {
		return err
	}
	lineIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}
	if err := q.UnlinkPartialsForLines(lineIDs); err != nil {
		return err
	}
	if err := q.DeleteMoveLines(lineIDs); err != nil {
		return err
	}
	if _, err := q.db.Exec(`DELETE FROM moves WHERE id = ?`, moveID); err != nil {
		return fmt.Errorf("failed to delete exchange move %d: %w", moveID, err)
	}
	return nil
}

// ReverseMove posts a reversal of the given move: a new entry in the same
// journal whose lines carry negated amounts. Partials touching the reversed
// move's lines are unlinked first, restoring the counterpart residuals.
func (q *queries) ReverseMove(moveID int64, date, ref string) (int64, error) {
	move, err := q.Move(moveID)
	if err != nil {
		return 0, err
	}
	lines, err := q.MoveLines(moveID)
	if err != nil {
		return 0, err
	}
	lineIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}
	if err := q.UnlinkPartialsForLines(lineIDs); err != nil {
		return 0, err
	}

	reversal := &model.Move{
		CompanyID: move.CompanyID,
		JournalID: move.JournalID,
		Date:      date,
		Ref:       ref,
		State:     model.MoveStatePosted,
	}
	if _, err := q.CreateMove(reversal); err != nil {
		return 0, err
	}
	for _, line := range lines {
		reversed := &model.MoveLine{
			MoveID:         reversal.ID,
			CompanyID:      line.CompanyID,
			AccountID:      line.AccountID,
			PartnerID:      line.PartnerID,
			Date:           date,
			Name:           line.Name,
			Debit:          line.Credit,
			Credit:         line.Debit,
			CurrencyID:     line.CurrencyID,
			AmountCurrency: -line.AmountCurrency,
		}
		if _, err := q.CreateMoveLine(reversed); err != nil {
			return 0, err
		}
	}
	return reversal.ID, nil
}

// UndoReconciliation resets a statement entry back to its unreconciled
// shape: partials are unlinked, non-liquidity lines are removed and a fresh
// suspense line balancing the liquidity side is recreated.
func (q *queries) UndoReconciliation(st *model.StatementLine) error {
	journal, err := q.Journal(st.JournalID)
	if err != nil {
		return err
	}
	liquidity, suspense, other, err := q.SeekLines(st)
	if err != nil {
		return err
	}

	var removeIDs []int64
	var allIDs []int64
	for _, line := range liquidity {
		allIDs = append(allIDs, line.ID)
	}
	for _, line := range append(suspense, other...) {
		removeIDs = append(removeIDs, line.ID)
		allIDs = append(allIDs, line.ID)
	}
	if err := q.UnlinkPartialsForLines(allIDs); err != nil {
		return err
	}
	if err := q.DeleteMoveLines(removeIDs); err != nil {
		return err
	}

	var balance, amountCurrency float64
	currencyID := st.CurrencyID
	for _, line := range liquidity {
		balance += line.Balance()
		amountCurrency += line.AmountCurrency
	}
	if st.ForeignCurrencyID != 0 {
		currencyID = st.ForeignCurrencyID
		amountCurrency = st.AmountCurrency
	}
	newSuspense := &model.MoveLine{
		MoveID:         st.MoveID,
		CompanyID:      st.CompanyID,
		AccountID:      journal.SuspenseAccountID,
		PartnerID:      st.PartnerID,
		Date:           st.Date,
		Name:           st.PaymentRef,
		CurrencyID:     currencyID,
		AmountCurrency: -amountCurrency,
	}
	if balance > 0 {
		newSuspense.Credit = balance
	} else {
		newSuspense.Debit = -balance
	}
	if _, err := q.CreateMoveLine(newSuspense); err != nil {
		return err
	}
	return q.SetStatementLineReconciled(st.ID, false)
}
