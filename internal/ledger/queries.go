package ledger

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/openledger-dev/bank-reconcile/internal/currency"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// queries implements all reads and writes over either *sql.DB or *sql.Tx.
type queries struct {
	db         dbtx
	currencies *currency.Service
}

// SaveCompany inserts or replaces a company.
func (q *queries) SaveCompany(c *model.Company) error {
	_, err := q.db.Exec(`
		INSERT OR REPLACE INTO companies
			(id, name, currency_id, expense_fx_account_id, income_fx_account_id, fx_journal_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.CurrencyID,
		c.ExpenseCurrencyExchangeAccountID, c.IncomeCurrencyExchangeAccountID,
		c.CurrencyExchangeJournalID,
	)
	if err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

// Company retrieves a company by id.
func (q *queries) Company(id int64) (*model.Company, error) {
	var c model.Company
	err := q.db.QueryRow(`
		SELECT id, name, currency_id, expense_fx_account_id, income_fx_account_id, fx_journal_id
		FROM companies WHERE id = ?`, id).Scan(
		&c.ID, &c.Name, &c.CurrencyID,
		&c.ExpenseCurrencyExchangeAccountID, &c.IncomeCurrencyExchangeAccountID,
		&c.CurrencyExchangeJournalID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// SaveAccount inserts or replaces an account.
func (q *queries) SaveAccount(a *model.Account) error {
	_, err := q.db.Exec(`
		INSERT OR REPLACE INTO accounts (id, company_id, code, name, type, reconcile)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.CompanyID, a.Code, a.Name, string(a.Type), a.Reconcile,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// Account retrieves an account by id.
func (q *queries) Account(id int64) (*model.Account, error) {
	var a model.Account
	var accountType string
	err := q.db.QueryRow(`
		SELECT id, company_id, code, name, type, reconcile
		FROM accounts WHERE id = ?`, id).Scan(
		&a.ID, &a.CompanyID, &a.Code, &a.Name, &accountType, &a.Reconcile,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.Type = model.AccountType(accountType)
	return &a, nil
}

// SaveJournal inserts or replaces a journal.
func (q *queries) SaveJournal(j *model.Journal) error {
	_, err := q.db.Exec(`
		INSERT OR REPLACE INTO journals
			(id, company_id, name, currency_id, default_account_id, suspense_account_id, reconcile_mode)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CompanyID, j.Name, j.CurrencyID,
		j.DefaultAccountID, j.SuspenseAccountID, string(j.ReconcileMode),
	)
	if err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	return nil
}

// Journal retrieves a journal by id.
func (q *queries) Journal(id int64) (*model.Journal, error) {
	var j model.Journal
	var mode string
	err := q.db.QueryRow(`
		SELECT id, company_id, name, currency_id, default_account_id, suspense_account_id, reconcile_mode
		FROM journals WHERE id = ?`, id).Scan(
		&j.ID, &j.CompanyID, &j.Name, &j.CurrencyID,
		&j.DefaultAccountID, &j.SuspenseAccountID, &mode,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal: %w", err)
	}
	j.ReconcileMode = model.ReconcileMode(mode)
	return &j, nil
}

// SavePartner inserts or replaces a partner and its bank accounts.
func (q *queries) SavePartner(p *model.Partner) error {
	_, err := q.db.Exec(`
		INSERT OR REPLACE INTO partners
			(id, company_id, name, receivable_account_id, payable_account_id)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.Name, p.ReceivableAccountID, p.PayableAccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to save partner: %w", err)
	}
	if _, err := q.db.Exec(`DELETE FROM partner_banks WHERE partner_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to reset partner banks: %w", err)
	}
	for _, number := range p.BankAccounts {
		if _, err := q.db.Exec(`
			INSERT INTO partner_banks (partner_id, account_number) VALUES (?, ?)`,
			p.ID, number); err != nil {
			return fmt.Errorf("failed to save partner bank: %w", err)
		}
	}
	return nil
}

// Partner retrieves a partner by id.
func (q *queries) Partner(id int64) (*model.Partner, error) {
	var p model.Partner
	err := q.db.QueryRow(`
		SELECT id, company_id, name, receivable_account_id, payable_account_id
		FROM partners WHERE id = ?`, id).Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.ReceivableAccountID, &p.PayableAccountID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	rows, err := q.db.Query(`SELECT account_number FROM partner_banks WHERE partner_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner banks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("failed to scan partner bank: %w", err)
		}
		p.BankAccounts = append(p.BankAccounts, number)
	}
	return &p, nil
}

// PartnerByBankAccount finds the partner owning the given bank account
// number. Returns nil when no or more than one partner matches.
func (q *queries) PartnerByBankAccount(companyID int64, accountNumber string) (*model.Partner, error) {
	rows, err := q.db.Query(`
		SELECT DISTINCT p.id
		FROM partner_banks pb JOIN partners p ON p.id = pb.partner_id
		WHERE pb.account_number = ? AND p.company_id = ?`, accountNumber, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to search partner by bank account: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan partner id: %w", err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 1 {
		return nil, nil
	}
	return q.Partner(ids[0])
}

// PartnerByName finds a partner by case-insensitive name match.
func (q *queries) PartnerByName(companyID int64, name string) (*model.Partner, error) {
	var id int64
	err := q.db.QueryRow(`
		SELECT id FROM partners
		WHERE company_id = ? AND lower(name) = lower(?)
		LIMIT 1`, companyID, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search partner by name: %w", err)
	}
	return q.Partner(id)
}

// PartnerByTextMatch finds a partner whose name appears inside the given
// text and who already has posted move lines, mirroring the historical
// text-matching fallback of the partner resolver.
func (q *queries) PartnerByTextMatch(companyID int64, text string) (*model.Partner, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var id int64
	err := q.db.QueryRow(`
		SELECT p.id FROM partners p
		WHERE p.company_id = ?
		  AND length(p.name) >= 3
		  AND instr(lower(?), lower(p.name)) > 0
		  AND EXISTS (SELECT 1 FROM move_lines ml WHERE ml.partner_id = p.id)
		LIMIT 1`, companyID, text).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search partner by text: %w", err)
	}
	return q.Partner(id)
}

const moveLineColumns = `
	id, move_id, company_id, account_id, partner_id, date, name,
	debit, credit, currency_id, amount_currency,
	amount_residual, amount_residual_currency, reconciled`

func scanMoveLine(scan func(dest ...interface{}) error) (model.MoveLine, error) {
	var l model.MoveLine
	err := scan(
		&l.ID, &l.MoveID, &l.CompanyID, &l.AccountID, &l.PartnerID, &l.Date, &l.Name,
		&l.Debit, &l.Credit, &l.CurrencyID, &l.AmountCurrency,
		&l.AmountResidual, &l.AmountResidualCurrency, &l.Reconciled,
	)
	return l, err
}

// MoveLine retrieves a move line by id.
func (q *queries) MoveLine(id int64) (*model.MoveLine, error) {
	row := q.db.QueryRow(`SELECT `+moveLineColumns+` FROM move_lines WHERE id = ?`, id)
	line, err := scanMoveLine(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get move line: %w", err)
	}
	return &line, nil
}

// MoveLines retrieves all lines of a move ordered by id.
func (q *queries) MoveLines(moveID int64) ([]model.MoveLine, error) {
	rows, err := q.db.Query(`SELECT `+moveLineColumns+` FROM move_lines WHERE move_id = ? ORDER BY id`, moveID)
	if err != nil {
		return nil, fmt.Errorf("failed to list move lines: %w", err)
	}
	defer rows.Close()

	var lines []model.MoveLine
	for rows.Next() {
		line, err := scanMoveLine(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// MoveLinesByIDs retrieves the given move lines, in id order.
func (q *queries) MoveLinesByIDs(ids []int64) ([]model.MoveLine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.db.Query(
		`SELECT `+moveLineColumns+` FROM move_lines WHERE id IN (`+placeholders+`) ORDER BY id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list move lines: %w", err)
	}
	defer rows.Close()

	var lines []model.MoveLine
	for rows.Next() {
		line, err := scanMoveLine(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// OpenLines lists unreconciled lines on open-item accounts with a non-zero
// residual, candidates for invoice matching. Lines of excludeMoveID are
// skipped so a statement line never matches its own entry.
func (q *queries) OpenLines(companyID, excludeMoveID int64) ([]model.MoveLine, error) {
	rows, err := q.db.Query(`
		SELECT `+qualifyColumns("ml", moveLineColumns)+`
		FROM move_lines ml
		JOIN accounts a ON a.id = ml.account_id
		JOIN moves m ON m.id = ml.move_id
		WHERE ml.company_id = ?
		  AND ml.move_id != ?
		  AND a.reconcile = 1
		  AND ml.reconciled = 0
		  AND m.state = 'posted'
		ORDER BY ml.date, ml.id`, companyID, excludeMoveID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open lines: %w", err)
	}
	defer rows.Close()

	var lines []model.MoveLine
	for rows.Next() {
		line, err := scanMoveLine(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func qualifyColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

// Move retrieves a move by id.
func (q *queries) Move(id int64) (*model.Move, error) {
	var m model.Move
	var state string
	err := q.db.QueryRow(`
		SELECT id, company_id, journal_id, date, ref, state, statement_line_id
		FROM moves WHERE id = ?`, id).Scan(
		&m.ID, &m.CompanyID, &m.JournalID, &m.Date, &m.Ref, &state, &m.StatementLineID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get move: %w", err)
	}
	m.State = model.MoveState(state)
	return &m, nil
}

// CreateMove inserts a move and returns its id.
func (q *queries) CreateMove(m *model.Move) (int64, error) {
	if m.State == "" {
		m.State = model.MoveStateDraft
	}
	res, err := q.db.Exec(`
		INSERT INTO moves (company_id, journal_id, date, ref, state, statement_line_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.CompanyID, m.JournalID, m.Date, m.Ref, string(m.State), m.StatementLineID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create move: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get move id: %w", err)
	}
	m.ID = id
	return id, nil
}

// MovesByStatementLine lists the moves linked to a statement line, the
// backing entry included.
func (q *queries) MovesByStatementLine(statementLineID int64) ([]model.Move, error) {
	rows, err := q.db.Query(`
		SELECT id, company_id, journal_id, date, ref, state, statement_line_id
		FROM moves WHERE statement_line_id = ? ORDER BY id`, statementLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	defer rows.Close()

	var moves []model.Move
	for rows.Next() {
		var m model.Move
		var state string
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.JournalID, &m.Date, &m.Ref,
			&state, &m.StatementLineID); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		m.State = model.MoveState(state)
		moves = append(moves, m)
	}
	return moves, nil
}

// DetachMoveFromStatementLine drops the statement line link of a move.
func (q *queries) DetachMoveFromStatementLine(moveID int64) error {
	if _, err := q.db.Exec(`UPDATE moves SET statement_line_id = 0 WHERE id = ?`, moveID); err != nil {
		return fmt.Errorf("failed to detach move: %w", err)
	}
	return nil
}

// PostMove marks a move as posted.
func (q *queries) PostMove(moveID int64) error {
	if _, err := q.db.Exec(`UPDATE moves SET state = 'posted' WHERE id = ?`, moveID); err != nil {
		return fmt.Errorf("failed to post move: %w", err)
	}
	return nil
}

// CreateMoveLine inserts a move line and returns its id. The residual is
// initialized to the line balance.
func (q *queries) CreateMoveLine(l *model.MoveLine) (int64, error) {
	l.AmountResidual = l.Debit - l.Credit
	l.AmountResidualCurrency = l.AmountCurrency
	res, err := q.db.Exec(`
		INSERT INTO move_lines
			(move_id, company_id, account_id, partner_id, date, name,
			 debit, credit, currency_id, amount_currency,
			 amount_residual, amount_residual_currency, reconciled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		l.MoveID, l.CompanyID, l.AccountID, l.PartnerID, l.Date, l.Name,
		l.Debit, l.Credit, l.CurrencyID, l.AmountCurrency,
		l.AmountResidual, l.AmountResidualCurrency,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create move line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get move line id: %w", err)
	}
	l.ID = id
	return id, nil
}

// DeleteMoveLines removes the given move lines.
func (q *queries) DeleteMoveLines(ids []int64) error {
	for _, id := range ids {
		if _, err := q.db.Exec(`DELETE FROM move_lines WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete move line %d: %w", id, err)
		}
	}
	return nil
}

// UpdateMoveLinesPartner sets the partner on the given lines.
func (q *queries) UpdateMoveLinesPartner(ids []int64, partnerID int64) error {
	for _, id := range ids {
		if _, err := q.db.Exec(`UPDATE move_lines SET partner_id = ? WHERE id = ?`, partnerID, id); err != nil {
			return fmt.Errorf("failed to update move line partner: %w", err)
		}
	}
	return nil
}
