package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/errs"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// GetByID retrieves an asset with all its yearly sub-records
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `
		SELECT id, owner_id, name, category, acquisition_date, cost, market_value,
		       metal, currency, disposed_date, disposed_proceeds, closed_date, closed_proceeds
		FROM assets
		WHERE id = $1
	`

	var asset domain.Asset
	var ownerID sql.NullString
	var costStr, marketValueStr string
	var metal, currency sql.NullString
	var disposedDate, closedDate sql.NullTime
	var disposedProceeds, closedProceeds sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&asset.ID,
		&ownerID,
		&asset.Name,
		&asset.Category,
		&asset.AcquisitionDate,
		&costStr,
		&marketValueStr,
		&metal,
		&currency,
		&disposedDate,
		&disposedProceeds,
		&closedDate,
		&closedProceeds,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset by ID: %w", err)
	}

	if ownerID.Valid {
		owner, err := uuid.Parse(ownerID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse owner_id: %w", err)
		}
		asset.OwnerID = owner
	}
	if asset.Cost, err = decimal.NewFromString(costStr); err != nil {
		return nil, fmt.Errorf("failed to parse cost: %w", err)
	}
	if asset.MarketValue, err = decimal.NewFromString(marketValueStr); err != nil {
		return nil, fmt.Errorf("failed to parse market_value: %w", err)
	}
	if metal.Valid {
		asset.Metal = domain.MetalType(metal.String)
	}
	if currency.Valid {
		asset.Currency = currency.String
	}
	if asset.Disposed, err = scanLifecycle(disposedDate, disposedProceeds); err != nil {
		return nil, fmt.Errorf("failed to parse disposal: %w", err)
	}
	if asset.Closed, err = scanLifecycle(closedDate, closedProceeds); err != nil {
		return nil, fmt.Errorf("failed to parse closure: %w", err)
	}

	if err := r.loadSubRecords(ctx, &asset); err != nil {
		return nil, err
	}

	return &asset, nil
}

// Create creates a new asset with all its sub-records in a database transaction
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := insertAsset(ctx, dbTx, asset); err != nil {
		return err
	}
	if err := insertAssetSubRecords(ctx, dbTx, asset); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update replaces an asset and rewrites its sub-records in a database transaction
func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	updateQuery := `
		UPDATE assets
		SET owner_id = $2, name = $3, category = $4, acquisition_date = $5,
		    cost = $6, market_value = $7, metal = $8, currency = $9,
		    disposed_date = $10, disposed_proceeds = $11,
		    closed_date = $12, closed_proceeds = $13
		WHERE id = $1
	`

	res, err := dbTx.ExecContext(ctx, updateQuery, assetArgs(asset)...)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("asset %s: %w", asset.ID, errs.ErrNotFound)
	}

	// Sub-records are rewritten wholesale; they are small per asset
	subTables := []string{
		"asset_ownership_shares", "asset_balances", "asset_stock_balances",
		"asset_property_expenses", "asset_valuations", "asset_jewellery_txns",
	}
	for _, table := range subTables {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table+" WHERE asset_id = $1", asset.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertAssetSubRecords(ctx, dbTx, asset); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByOwner retrieves assets owned solely by the entity plus joint assets
// in which it holds a share
func (r *assetRepository) ListByOwner(ctx context.Context, entityID uuid.UUID) ([]*domain.Asset, error) {
	query := `
		SELECT a.id
		FROM assets a
		LEFT JOIN asset_ownership_shares s ON s.asset_id = a.id AND s.entity_id = $1
		WHERE a.owner_id = $1 OR s.entity_id IS NOT NULL
		ORDER BY a.name
	`
	return r.listByIDQuery(ctx, query, entityID)
}

// List retrieves all assets across the family
func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	return r.listByIDQuery(ctx, `SELECT id FROM assets ORDER BY name`)
}

func (r *assetRepository) listByIDQuery(ctx context.Context, query string, args ...interface{}) ([]*domain.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan asset id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	assets := make([]*domain.Asset, 0, len(ids))
	for _, id := range ids {
		asset, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	return assets, nil
}

func insertAsset(ctx context.Context, dbTx *sql.Tx, asset *domain.Asset) error {
	insertQuery := `
		INSERT INTO assets (id, owner_id, name, category, acquisition_date, cost, market_value,
		                    metal, currency, disposed_date, disposed_proceeds, closed_date, closed_proceeds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if _, err := dbTx.ExecContext(ctx, insertQuery, assetArgs(asset)...); err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

func assetArgs(asset *domain.Asset) []interface{} {
	var ownerID interface{}
	if asset.OwnerID != uuid.Nil {
		ownerID = asset.OwnerID
	}
	var metal, currency interface{}
	if asset.Metal != "" {
		metal = string(asset.Metal)
	}
	if asset.Currency != "" {
		currency = asset.Currency
	}
	disposedDate, disposedProceeds := lifecycleArgs(asset.Disposed)
	closedDate, closedProceeds := lifecycleArgs(asset.Closed)

	return []interface{}{
		asset.ID,
		ownerID,
		asset.Name,
		string(asset.Category),
		asset.AcquisitionDate,
		asset.Cost.String(),
		asset.MarketValue.String(),
		metal,
		currency,
		disposedDate,
		disposedProceeds,
		closedDate,
		closedProceeds,
	}
}

func insertAssetSubRecords(ctx context.Context, dbTx *sql.Tx, asset *domain.Asset) error {
	for _, s := range asset.OwnershipShares {
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO asset_ownership_shares (asset_id, entity_id, percentage) VALUES ($1, $2, $3)`,
			asset.ID, s.EntityID, s.Percentage.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert ownership share: %w", err)
		}
	}

	for _, b := range asset.Balances {
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO asset_balances (asset_id, tax_year, closing_balance, interest_earned, wht_deducted)
			 VALUES ($1, $2, $3, $4, $5)`,
			asset.ID, int(b.TaxYear), b.ClosingBalance.String(), b.InterestEarned.String(), b.WHTDeducted.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert yearly balance: %w", err)
		}
	}

	for _, b := range asset.StockBalances {
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO asset_stock_balances (asset_id, tax_year, portfolio_value, cash_balance, dividends, wht_deducted)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			asset.ID, int(b.TaxYear), b.PortfolioValue.String(), b.CashBalance.String(), b.Dividends.String(), b.WHTDeducted.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert stock balance: %w", err)
		}
	}

	for _, e := range asset.PropertyExpense {
		var marketValue interface{}
		if e.MarketValue != nil {
			marketValue = e.MarketValue.String()
		}
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO asset_property_expenses (asset_id, tax_year, amount, description, market_value)
			 VALUES ($1, $2, $3, $4, $5)`,
			asset.ID, int(e.TaxYear), e.Amount.String(), e.Description, marketValue,
		)
		if err != nil {
			return fmt.Errorf("failed to insert property expense: %w", err)
		}
	}

	for _, v := range asset.Valuations {
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO asset_valuations (asset_id, tax_year, value, source) VALUES ($1, $2, $3, $4)`,
			asset.ID, int(v.TaxYear), v.Value.String(), v.Source,
		)
		if err != nil {
			return fmt.Errorf("failed to insert valuation: %w", err)
		}
	}

	for _, t := range asset.JewelleryTxns {
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO asset_jewellery_txns (asset_id, date, description, amount) VALUES ($1, $2, $3, $4)`,
			asset.ID, t.Date, t.Description, t.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert jewellery transaction: %w", err)
		}
	}

	return nil
}

func (r *assetRepository) loadSubRecords(ctx context.Context, asset *domain.Asset) error {
	shares, err := scanOwnershipShares(ctx, r.db.DB,
		`SELECT entity_id, percentage FROM asset_ownership_shares WHERE asset_id = $1`, asset.ID)
	if err != nil {
		return fmt.Errorf("failed to load ownership shares: %w", err)
	}
	asset.OwnershipShares = shares

	rows, err := r.db.QueryContext(ctx,
		`SELECT tax_year, closing_balance, interest_earned, wht_deducted
		 FROM asset_balances WHERE asset_id = $1 ORDER BY tax_year`, asset.ID)
	if err != nil {
		return fmt.Errorf("failed to load yearly balances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b domain.YearlyBalance
		var closing, interest, wht string
		if err := rows.Scan(&b.TaxYear, &closing, &interest, &wht); err != nil {
			return fmt.Errorf("failed to scan yearly balance: %w", err)
		}
		if b.ClosingBalance, err = decimal.NewFromString(closing); err != nil {
			return fmt.Errorf("failed to parse closing_balance: %w", err)
		}
		if b.InterestEarned, err = decimal.NewFromString(interest); err != nil {
			return fmt.Errorf("failed to parse interest_earned: %w", err)
		}
		if b.WHTDeducted, err = decimal.NewFromString(wht); err != nil {
			return fmt.Errorf("failed to parse wht_deducted: %w", err)
		}
		asset.Balances = append(asset.Balances, b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate yearly balances: %w", err)
	}

	stockRows, err := r.db.QueryContext(ctx,
		`SELECT tax_year, portfolio_value, cash_balance, dividends, wht_deducted
		 FROM asset_stock_balances WHERE asset_id = $1 ORDER BY tax_year`, asset.ID)
	if err != nil {
		return fmt.Errorf("failed to load stock balances: %w", err)
	}
	defer stockRows.Close()
	for stockRows.Next() {
		var b domain.StockBalance
		var portfolio, cash, dividends, wht string
		if err := stockRows.Scan(&b.TaxYear, &portfolio, &cash, &dividends, &wht); err != nil {
			return fmt.Errorf("failed to scan stock balance: %w", err)
		}
		if b.PortfolioValue, err = decimal.NewFromString(portfolio); err != nil {
			return fmt.Errorf("failed to parse portfolio_value: %w", err)
		}
		if b.CashBalance, err = decimal.NewFromString(cash); err != nil {
			return fmt.Errorf("failed to parse cash_balance: %w", err)
		}
		if b.Dividends, err = decimal.NewFromString(dividends); err != nil {
			return fmt.Errorf("failed to parse dividends: %w", err)
		}
		if b.WHTDeducted, err = decimal.NewFromString(wht); err != nil {
			return fmt.Errorf("failed to parse wht_deducted: %w", err)
		}
		asset.StockBalances = append(asset.StockBalances, b)
	}
	if err := stockRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate stock balances: %w", err)
	}

	expenseRows, err := r.db.QueryContext(ctx,
		`SELECT tax_year, amount, description, market_value
		 FROM asset_property_expenses WHERE asset_id = $1 ORDER BY tax_year`, asset.ID)
	if err != nil {
		return fmt.Errorf("failed to load property expenses: %w", err)
	}
	defer expenseRows.Close()
	for expenseRows.Next() {
		var e domain.PropertyExpense
		var amount string
		var marketValue sql.NullString
		if err := expenseRows.Scan(&e.TaxYear, &amount, &e.Description, &marketValue); err != nil {
			return fmt.Errorf("failed to scan property expense: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("failed to parse expense amount: %w", err)
		}
		if marketValue.Valid {
			mv, err := decimal.NewFromString(marketValue.String)
			if err != nil {
				return fmt.Errorf("failed to parse expense market_value: %w", err)
			}
			e.MarketValue = &mv
		}
		asset.PropertyExpense = append(asset.PropertyExpense, e)
	}
	if err := expenseRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate property expenses: %w", err)
	}

	valuationRows, err := r.db.QueryContext(ctx,
		`SELECT tax_year, value, source FROM asset_valuations WHERE asset_id = $1 ORDER BY tax_year`, asset.ID)
	if err != nil {
		return fmt.Errorf("failed to load valuations: %w", err)
	}
	defer valuationRows.Close()
	for valuationRows.Next() {
		var v domain.Valuation
		var value string
		if err := valuationRows.Scan(&v.TaxYear, &value, &v.Source); err != nil {
			return fmt.Errorf("failed to scan valuation: %w", err)
		}
		if v.Value, err = decimal.NewFromString(value); err != nil {
			return fmt.Errorf("failed to parse valuation value: %w", err)
		}
		asset.Valuations = append(asset.Valuations, v)
	}
	if err := valuationRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate valuations: %w", err)
	}

	txnRows, err := r.db.QueryContext(ctx,
		`SELECT date, description, amount FROM asset_jewellery_txns WHERE asset_id = $1 ORDER BY date`, asset.ID)
	if err != nil {
		return fmt.Errorf("failed to load jewellery transactions: %w", err)
	}
	defer txnRows.Close()
	for txnRows.Next() {
		var t domain.JewelleryTransaction
		var amount string
		if err := txnRows.Scan(&t.Date, &t.Description, &amount); err != nil {
			return fmt.Errorf("failed to scan jewellery transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("failed to parse jewellery amount: %w", err)
		}
		asset.JewelleryTxns = append(asset.JewelleryTxns, t)
	}
	if err := txnRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate jewellery transactions: %w", err)
	}

	return nil
}

func lifecycleArgs(l *domain.Lifecycle) (interface{}, interface{}) {
	if l == nil {
		return nil, nil
	}
	return l.Date, l.Proceeds.String()
}

func scanLifecycle(date sql.NullTime, proceeds sql.NullString) (*domain.Lifecycle, error) {
	if !date.Valid {
		return nil, nil
	}
	l := &domain.Lifecycle{Date: date.Time}
	if proceeds.Valid {
		p, err := decimal.NewFromString(proceeds.String)
		if err != nil {
			return nil, err
		}
		l.Proceeds = p
	}
	return l, nil
}

// scanOwnershipShares loads the joint ownership rows for an asset or liability.
func scanOwnershipShares(ctx context.Context, db *sql.DB, query string, id uuid.UUID) ([]domain.OwnershipShare, error) {
	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []domain.OwnershipShare
	for rows.Next() {
		var s domain.OwnershipShare
		var pct string
		if err := rows.Scan(&s.EntityID, &pct); err != nil {
			return nil, err
		}
		if s.Percentage, err = decimal.NewFromString(pct); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}
