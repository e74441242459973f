package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

const journalColumns = `j.journal_id, j.number, j.journal_date, j.description, j.reference, j.period_id,
		       j.reversed, j.reversed_by_id, j.reversal_of_id, j.closing,
		       j.created_at, j.created_by, j.last_updated_at, j.last_updated_by`

func scanJournal(row pgx.Row) (domain.Journal, error) {
	var j domain.Journal
	err := row.Scan(
		&j.JournalID, &j.Number, &j.Date, &j.Description, &j.Reference, &j.PeriodID,
		&j.Reversed, &j.ReversedByID, &j.ReversalOfID, &j.Closing,
		&j.CreatedAt, &j.CreatedBy, &j.LastUpdatedAt, &j.LastUpdatedBy,
	)
	return j, err
}

// LockJournalNumbering implements portsrepo.JournalWriter with a transaction-scoped
// advisory lock keyed by the company, released on commit or rollback.
func (s *TenantStore) LockJournalNumbering(ctx context.Context) error {
	_, err := s.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('journal-number:' || $1::text, 0));`, s.companyID)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

// LastJournalNumber implements portsrepo.JournalWriter.
func (s *TenantStore) LastJournalNumber(ctx context.Context) (string, bool, error) {
	var number string
	err := s.q.QueryRow(ctx,
		`SELECT number FROM journals WHERE company_id = $1 ORDER BY seq DESC LIMIT 1;`,
		s.companyID,
	).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, mapPgError(err)
	}
	return number, true, nil
}

// SaveJournal implements portsrepo.JournalWriter. Header and lines go out in one batch
// on the caller's transaction.
func (s *TenantStore) SaveJournal(ctx context.Context, j domain.Journal) error {
	seq, err := domain.ParseJournalNumber(j.Number)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO journals (
			journal_id, company_id, number, seq, journal_date, description, reference, period_id,
			reversed, reversed_by_id, reversal_of_id, closing,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`,
		j.JournalID, s.companyID, j.Number, seq, j.Date, j.Description, j.Reference, j.PeriodID,
		j.Reversed, j.ReversedByID, j.ReversalOfID, j.Closing,
		j.CreatedAt, j.CreatedBy, j.LastUpdatedAt, j.LastUpdatedBy,
	)
	for _, l := range j.Lines {
		batch.Queue(`
			INSERT INTO journal_lines (line_id, journal_id, company_id, account_id, debit, credit, memo, seq)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
			l.LineID, j.JournalID, s.companyID, l.AccountID, l.Debit, l.Credit, l.Memo, l.Seq,
		)
	}

	if err := s.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert journal %s: %w", j.Number, mapPgError(err))
	}
	return nil
}

// FindJournalByID implements portsrepo.JournalReader.
func (s *TenantStore) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	return s.findJournal(ctx, journalID, "")
}

// FindJournalByIDForUpdate implements portsrepo.JournalWriter.
func (s *TenantStore) FindJournalByIDForUpdate(ctx context.Context, journalID string) (*domain.Journal, error) {
	return s.findJournal(ctx, journalID, " FOR UPDATE")
}

func (s *TenantStore) findJournal(ctx context.Context, journalID, lock string) (*domain.Journal, error) {
	if _, err := parseUUID(journalID); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrJournalNotFound, journalID)
	}
	query := `SELECT ` + journalColumns + ` FROM journals j WHERE j.company_id = $1 AND j.journal_id = $2` + lock + `;`
	j, err := scanJournal(s.q.QueryRow(ctx, query, s.companyID, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrJournalNotFound, journalID)
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, mapPgError(err))
	}

	lines, err := s.linesByJournal(ctx, []string{j.JournalID})
	if err != nil {
		return nil, err
	}
	j.Lines = lines[j.JournalID]
	return &j, nil
}

func (s *TenantStore) linesByJournal(ctx context.Context, journalIDs []string) (map[string][]domain.JournalLine, error) {
	query := `
		SELECT line_id, journal_id, account_id, debit, credit, memo, seq
		FROM journal_lines
		WHERE company_id = $1 AND journal_id = ANY($2::uuid[])
		ORDER BY journal_id, seq;
	`
	rows, err := s.q.Query(ctx, query, s.companyID, journalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[string][]domain.JournalLine, len(journalIDs))
	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(&l.LineID, &l.JournalID, &l.AccountID, &l.Debit, &l.Credit, &l.Memo, &l.Seq); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		lines[l.JournalID] = append(lines[l.JournalID], l)
	}
	return lines, rows.Err()
}

// ListJournals implements portsrepo.JournalReader.
func (s *TenantStore) ListJournals(ctx context.Context, f domain.JournalFilter) ([]domain.Journal, error) {
	// Ids that are not UUIDs match nothing; casting them would fail the query.
	for _, id := range []*string{f.PeriodID, f.AccountID} {
		if id == nil {
			continue
		}
		if _, err := parseUUID(*id); err != nil {
			return []domain.Journal{}, nil
		}
	}

	where := []string{"j.company_id = $1"}
	args := []any{s.companyID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.From != nil {
		where = append(where, "j.journal_date >= "+arg(domain.DateOnly(*f.From))+"::date")
	}
	if f.To != nil {
		where = append(where, "j.journal_date <= "+arg(domain.DateOnly(*f.To))+"::date")
	}
	if f.PeriodID != nil {
		where = append(where, "j.period_id = "+arg(*f.PeriodID)+"::uuid")
	}
	if f.AccountID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM journal_lines l WHERE l.journal_id = j.journal_id AND l.account_id = "+arg(*f.AccountID)+"::uuid)")
	}
	if f.Reversed != nil {
		where = append(where, "j.reversed = "+arg(*f.Reversed))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		p := arg("%" + search + "%")
		where = append(where, "(j.description ILIKE "+p+" OR j.reference ILIKE "+p+" OR j.number ILIKE "+p+")")
	}
	if f.After != nil {
		seq, err := domain.ParseJournalNumber(f.After.Number)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		where = append(where, "(j.journal_date, j.seq) > ("+arg(domain.DateOnly(f.After.Date))+"::date, "+arg(seq)+")")
	}

	query := `SELECT ` + journalColumns + ` FROM journals j WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY j.journal_date, j.seq LIMIT ` + arg(f.Limit) + `;`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journals: %w", err)
	}
	journals := make([]domain.Journal, 0, f.Limit)
	ids := make([]string, 0, f.Limit)
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		journals = append(journals, j)
		ids = append(ids, j.JournalID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journals: %w", err)
	}
	if len(ids) == 0 {
		return journals, nil
	}

	lines, err := s.linesByJournal(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range journals {
		journals[i].Lines = lines[journals[i].JournalID]
	}
	return journals, nil
}

// ListPostedLines implements portsrepo.JournalReader.
func (s *TenantStore) ListPostedLines(ctx context.Context, f domain.LineFilter) ([]domain.PostedLine, error) {
	where := []string{"l.company_id = $1"}
	args := []any{s.companyID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.AccountID != nil {
		if _, err := parseUUID(*f.AccountID); err != nil {
			return []domain.PostedLine{}, nil
		}
		where = append(where, "l.account_id = "+arg(*f.AccountID)+"::uuid")
	}
	if f.From != nil {
		where = append(where, "j.journal_date >= "+arg(domain.DateOnly(*f.From))+"::date")
	}
	if f.To != nil {
		where = append(where, "j.journal_date <= "+arg(domain.DateOnly(*f.To))+"::date")
	}

	query := `
		SELECT l.line_id, l.journal_id, l.account_id, l.debit, l.credit, l.memo, l.seq,
		       j.number, j.journal_date, j.description, j.reference, j.closing
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY j.journal_date, j.seq, l.seq;`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.PostedLine, 0)
	for rows.Next() {
		var p domain.PostedLine
		if err := rows.Scan(
			&p.LineID, &p.JournalID, &p.AccountID, &p.Debit, &p.Credit, &p.Memo, &p.Seq,
			&p.JournalNumber, &p.JournalDate, &p.Description, &p.Reference, &p.Closing,
		); err != nil {
			return nil, fmt.Errorf("failed to scan posted line: %w", err)
		}
		lines = append(lines, p)
	}
	return lines, rows.Err()
}

// MarkJournalReversed implements portsrepo.JournalWriter. Only an unreversed journal is updated.
func (s *TenantStore) MarkJournalReversed(ctx context.Context, journalID, reversedByID, updatedBy string, updatedAt time.Time) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE journals
		SET reversed = TRUE, reversed_by_id = $3, last_updated_by = $4, last_updated_at = $5
		WHERE company_id = $1 AND journal_id = $2 AND reversed = FALSE;`,
		s.companyID, journalID, reversedByID, updatedBy, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark journal reversed: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyReversed, journalID)
	}
	return nil
}

// CountJournalsByPeriod implements portsrepo.JournalReader.
func (s *TenantStore) CountJournalsByPeriod(ctx context.Context) (map[string]int, error) {
	rows, err := s.q.Query(ctx,
		`SELECT period_id, COUNT(*) FROM journals WHERE company_id = $1 GROUP BY period_id;`, s.companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count journals: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			periodID string
			n        int
		)
		if err := rows.Scan(&periodID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan journal count: %w", err)
		}
		counts[periodID] = n
	}
	return counts, rows.Err()
}
