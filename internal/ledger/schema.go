// Package ledger provides the SQLite-backed double-entry store: accounts,
// partners, journals, moves, move lines, partial reconciliations and bank
// statement lines.
package ledger

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Master data
CREATE TABLE IF NOT EXISTS companies (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    currency_id INTEGER NOT NULL,
    expense_fx_account_id INTEGER NOT NULL DEFAULT 0,
    income_fx_account_id INTEGER NOT NULL DEFAULT 0,
    fx_journal_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY,
    company_id INTEGER NOT NULL,
    code TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    reconcile INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS partners (
    id INTEGER PRIMARY KEY,
    company_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    receivable_account_id INTEGER NOT NULL DEFAULT 0,
    payable_account_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS partner_banks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    partner_id INTEGER NOT NULL REFERENCES partners(id),
    account_number TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_partner_banks_number
    ON partner_banks(account_number);

CREATE TABLE IF NOT EXISTS journals (
    id INTEGER PRIMARY KEY,
    company_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    currency_id INTEGER NOT NULL DEFAULT 0,
    default_account_id INTEGER NOT NULL,
    suspense_account_id INTEGER NOT NULL,
    reconcile_mode TEXT NOT NULL DEFAULT 'edit'
);

-- Journal entries
CREATE TABLE IF NOT EXISTS moves (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    company_id INTEGER NOT NULL,
    journal_id INTEGER NOT NULL,
    date TEXT NOT NULL,                -- YYYY-MM-DD
    ref TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT 'draft',
    statement_line_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS move_lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    move_id INTEGER NOT NULL REFERENCES moves(id),
    company_id INTEGER NOT NULL,
    account_id INTEGER NOT NULL,
    partner_id INTEGER NOT NULL DEFAULT 0,
    date TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    debit REAL NOT NULL DEFAULT 0,
    credit REAL NOT NULL DEFAULT 0,
    currency_id INTEGER NOT NULL,
    amount_currency REAL NOT NULL DEFAULT 0,
    amount_residual REAL NOT NULL DEFAULT 0,
    amount_residual_currency REAL NOT NULL DEFAULT 0,
    reconciled INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_move_lines_move
    ON move_lines(move_id);

CREATE INDEX IF NOT EXISTS idx_move_lines_account
    ON move_lines(account_id);

-- Partial reconciliation links between a debit line and a credit line
CREATE TABLE IF NOT EXISTS partial_reconcile (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    debit_line_id INTEGER NOT NULL REFERENCES move_lines(id),
    credit_line_id INTEGER NOT NULL REFERENCES move_lines(id),
    amount REAL NOT NULL,
    debit_amount_currency REAL NOT NULL DEFAULT 0,
    credit_amount_currency REAL NOT NULL DEFAULT 0,
    exchange_move_id INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_partial_debit
    ON partial_reconcile(debit_line_id);

CREATE INDEX IF NOT EXISTS idx_partial_credit
    ON partial_reconcile(credit_line_id);

-- Bank statement lines
CREATE TABLE IF NOT EXISTS statement_lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    move_id INTEGER NOT NULL DEFAULT 0,
    journal_id INTEGER NOT NULL REFERENCES journals(id),
    company_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    payment_ref TEXT NOT NULL DEFAULT '',
    ref TEXT NOT NULL DEFAULT '',
    narration TEXT NOT NULL DEFAULT '',
    partner_id INTEGER NOT NULL DEFAULT 0,
    partner_name TEXT NOT NULL DEFAULT '',
    account_number TEXT NOT NULL DEFAULT '',
    amount REAL NOT NULL,
    amount_currency REAL NOT NULL DEFAULT 0,
    foreign_currency_id INTEGER NOT NULL DEFAULT 0,
    currency_id INTEGER NOT NULL,
    is_reconciled INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_statement_lines_journal
    ON statement_lines(journal_id, is_reconciled);
`
