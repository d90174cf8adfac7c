package ledger

import (
	"database/sql"
	"fmt"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// CreateStatementLine stores a statement line and creates its backing journal
// entry: a liquidity line on the journal's bank account and a suspense line
// balancing it. The entry is posted immediately, as bank statements are.
func (q *queries) CreateStatementLine(st *model.StatementLine) error {
	journal, err := q.Journal(st.JournalID)
	if err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}
	company, err := q.Company(journal.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to load company: %w", err)
	}
	st.CompanyID = company.ID
	journalCurrency := journal.CurrencyID
	if journalCurrency == 0 {
		journalCurrency = company.CurrencyID
	}
	st.CurrencyID = journalCurrency

	res, err := q.db.Exec(`
		INSERT INTO statement_lines
			(move_id, journal_id, company_id, date, payment_ref, ref, narration,
			 partner_id, partner_name, account_number,
			 amount, amount_currency, foreign_currency_id, currency_id, is_reconciled)
		VALUES (0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		st.JournalID, st.CompanyID, st.Date, st.PaymentRef, st.Ref, st.Narration,
		st.PartnerID, st.PartnerName, st.AccountNumber,
		st.Amount, st.AmountCurrency, st.ForeignCurrencyID, st.CurrencyID,
	)
	if err != nil {
		return fmt.Errorf("failed to create statement line: %w", err)
	}
	st.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get statement line id: %w", err)
	}

	move := &model.Move{
		CompanyID:       company.ID,
		JournalID:       journal.ID,
		Date:            st.Date,
		Ref:             st.PaymentRef,
		State:           model.MoveStatePosted,
		StatementLineID: st.ID,
	}
	if _, err := q.CreateMove(move); err != nil {
		return err
	}

	if err := q.createStatementMoveLines(st, journal, company, move.ID); err != nil {
		return err
	}

	if _, err := q.db.Exec(`UPDATE statement_lines SET move_id = ? WHERE id = ?`, move.ID, st.ID); err != nil {
		return fmt.Errorf("failed to link statement line move: %w", err)
	}
	st.MoveID = move.ID
	return nil
}

// createStatementMoveLines posts the two sides of the bank movement: a
// liquidity line on the journal's bank account and a suspense line balancing
// it, carrying the statement's foreign currency when one is set.
func (q *queries) createStatementMoveLines(st *model.StatementLine, journal *model.Journal, company *model.Company, moveID int64) error {
	journalCurrency := journal.CurrencyID
	if journalCurrency == 0 {
		journalCurrency = company.CurrencyID
	}

	// Company-currency balance of the movement.
	balance := st.Amount
	if journalCurrency != company.CurrencyID {
		balance = q.currencies.Convert(st.Amount, journalCurrency, company.CurrencyID, st.Date)
	}

	liquidity := &model.MoveLine{
		MoveID:         moveID,
		CompanyID:      company.ID,
		AccountID:      journal.DefaultAccountID,
		PartnerID:      st.PartnerID,
		Date:           st.Date,
		Name:           st.PaymentRef,
		CurrencyID:     journalCurrency,
		AmountCurrency: st.Amount,
	}
	if balance > 0 {
		liquidity.Debit = balance
	} else {
		liquidity.Credit = -balance
	}
	if _, err := q.CreateMoveLine(liquidity); err != nil {
		return err
	}

	suspenseCurrency := journalCurrency
	suspenseAmount := -st.Amount
	if st.ForeignCurrencyID != 0 {
		suspenseCurrency = st.ForeignCurrencyID
		suspenseAmount = -st.AmountCurrency
	}
	suspense := &model.MoveLine{
		MoveID:         moveID,
		CompanyID:      company.ID,
		AccountID:      journal.SuspenseAccountID,
		PartnerID:      st.PartnerID,
		Date:           st.Date,
		Name:           st.PaymentRef,
		CurrencyID:     suspenseCurrency,
		AmountCurrency: suspenseAmount,
	}
	if balance > 0 {
		suspense.Credit = balance
	} else {
		suspense.Debit = -balance
	}
	if _, err := q.CreateMoveLine(suspense); err != nil {
		return err
	}
	return nil
}

// SyncStatementMove rebuilds the backing entry of an unreconciled statement
// line after its monetary fields changed: every line is replaced by a fresh
// liquidity and suspense pair reflecting the current amounts.
func (q *queries) SyncStatementMove(st *model.StatementLine) error {
	journal, err := q.Journal(st.JournalID)
	if err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}
	company, err := q.Company(journal.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to load company: %w", err)
	}
	lines, err := q.MoveLines(st.MoveID)
	if err != nil {
		return err
	}
	var lineIDs []int64
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}
	if err := q.UnlinkPartialsForLines(lineIDs); err != nil {
		return err
	}
	if err := q.DeleteMoveLines(lineIDs); err != nil {
		return err
	}
	return q.createStatementMoveLines(st, journal, company, st.MoveID)
}

const statementColumns = `
	id, move_id, journal_id, company_id, date, payment_ref, ref, narration,
	partner_id, partner_name, account_number,
	amount, amount_currency, foreign_currency_id, currency_id, is_reconciled`

func scanStatementLine(scan func(dest ...interface{}) error) (model.StatementLine, error) {
	var st model.StatementLine
	err := scan(
		&st.ID, &st.MoveID, &st.JournalID, &st.CompanyID, &st.Date,
		&st.PaymentRef, &st.Ref, &st.Narration,
		&st.PartnerID, &st.PartnerName, &st.AccountNumber,
		&st.Amount, &st.AmountCurrency, &st.ForeignCurrencyID, &st.CurrencyID,
		&st.IsReconciled,
	)
	return st, err
}

// StatementLine retrieves a statement line by id.
func (q *queries) StatementLine(id int64) (*model.StatementLine, error) {
	row := q.db.QueryRow(`SELECT `+statementColumns+` FROM statement_lines WHERE id = ?`, id)
	st, err := scanStatementLine(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement line: %w", err)
	}
	return &st, nil
}

// UnreconciledStatementLines lists the statement lines of a journal that are
// not reconciled yet. A zero journalID lists them across all journals.
func (q *queries) UnreconciledStatementLines(journalID int64) ([]model.StatementLine, error) {
	query := `SELECT ` + statementColumns + ` FROM statement_lines WHERE is_reconciled = 0`
	args := []interface{}{}
	if journalID != 0 {
		query += ` AND journal_id = ?`
		args = append(args, journalID)
	}
	query += ` ORDER BY date, id`

	rows, err := q.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list statement lines: %w", err)
	}
	defer rows.Close()

	var lines []model.StatementLine
	for rows.Next() {
		st, err := scanStatementLine(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement line: %w", err)
		}
		lines = append(lines, st)
	}
	return lines, nil
}

// UpdateStatementLine updates the editable statement line fields. The backing
// entry is not touched; callers run the consistency guard afterwards.
func (q *queries) UpdateStatementLine(st *model.StatementLine) error {
	_, err := q.db.Exec(`
		UPDATE statement_lines SET
			date = ?, payment_ref = ?, ref = ?, narration = ?,
			partner_id = ?, partner_name = ?, account_number = ?,
			amount = ?, amount_currency = ?, foreign_currency_id = ?
		WHERE id = ?`,
		st.Date, st.PaymentRef, st.Ref, st.Narration,
		st.PartnerID, st.PartnerName, st.AccountNumber,
		st.Amount, st.AmountCurrency, st.ForeignCurrencyID,
		st.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update statement line: %w", err)
	}
	return nil
}

// SetStatementLineReconciled flags a statement line as (un)reconciled.
func (q *queries) SetStatementLineReconciled(id int64, reconciled bool) error {
	if _, err := q.db.Exec(`UPDATE statement_lines SET is_reconciled = ? WHERE id = ?`, reconciled, id); err != nil {
		return fmt.Errorf("failed to set statement line reconciled: %w", err)
	}
	return nil
}

// SeekLines partitions the lines of the statement entry into liquidity,
// suspense and other lines, following the journal's account configuration.
func (q *queries) SeekLines(st *model.StatementLine) (liquidity, suspense, other []model.MoveLine, err error) {
	journal, err := q.Journal(st.JournalID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load journal: %w", err)
	}
	lines, err := q.MoveLines(st.MoveID)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, line := range lines {
		switch line.AccountID {
		case journal.DefaultAccountID:
			liquidity = append(liquidity, line)
		case journal.SuspenseAccountID:
			suspense = append(suspense, line)
		default:
			other = append(other, line)
		}
	}
	return liquidity, suspense, other, nil
}

// JournalStats summarizes reconciliation progress for one journal.
type JournalStats struct {
	JournalID    int64
	JournalName  string
	Reconciled   int
	Unreconciled int
}

// Stats returns per-journal reconciliation statistics.
func (q *queries) Stats() ([]JournalStats, error) {
	rows, err := q.db.Query(`
		SELECT j.id, j.name,
			SUM(CASE WHEN st.is_reconciled = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN st.is_reconciled = 0 THEN 1 ELSE 0 END)
		FROM statement_lines st
		JOIN journals j ON j.id = st.journal_id
		GROUP BY j.id, j.name
		ORDER BY j.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []JournalStats
	for rows.Next() {
		var s JournalStats
		if err := rows.Scan(&s.JournalID, &s.JournalName, &s.Reconciled, &s.Unreconciled); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, nil
}
