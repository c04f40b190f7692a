package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"backend/internal/domain"
	"backend/internal/service"
)

const sellerColumns = `
	id, name, email, phone, address, company_name, vat_number, created_at, updated_at
`

func (s *Store) ListSellers(ctx context.Context) ([]domain.Seller, error) {
	rows, err := s.db.Query(ctx, `SELECT `+sellerColumns+` FROM sellers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}
	defer rows.Close()

	sellers := make([]domain.Seller, 0)
	for rows.Next() {
		seller, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seller: %w", err)
		}
		sellers = append(sellers, seller)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sellers: %w", err)
	}
	return sellers, nil
}

func (s *Store) GetSeller(ctx context.Context, id int64) (*domain.Seller, error) {
	row := s.db.QueryRow(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE id = $1`, id)
	seller, err := scanSeller(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get seller %d: %w", id, err)
	}
	return &seller, nil
}

func (s *Store) InsertSeller(ctx context.Context, input service.SellerInput) (domain.Seller, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO sellers (name, email, phone, address, company_name, vat_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+sellerColumns,
		strings.TrimSpace(input.Name),
		input.Email,
		input.Phone,
		input.Address,
		input.CompanyName,
		input.VATNumber,
	)
	seller, err := scanSeller(row)
	if err != nil {
		return domain.Seller{}, fmt.Errorf("insert seller: %w", err)
	}
	return seller, nil
}

func (s *Store) UpdateSeller(ctx context.Context, id int64, input service.SellerInput) (*domain.Seller, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE sellers
		SET name = $2, email = $3, phone = $4, address = $5, company_name = $6, vat_number = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+sellerColumns,
		id,
		strings.TrimSpace(input.Name),
		input.Email,
		input.Phone,
		input.Address,
		input.CompanyName,
		input.VATNumber,
	)
	seller, err := scanSeller(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update seller %d: %w", id, err)
	}
	return &seller, nil
}

func (s *Store) DeleteSeller(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, "DELETE FROM sellers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete seller %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const customerColumns = `
	id, name, email, phone, billing_address, shipping_address, company_name, vat_number, created_at, updated_at
`

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	row := s.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return &customer, nil
}

func (s *Store) InsertCustomer(ctx context.Context, input service.CustomerInput) (domain.Customer, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO customers (name, email, phone, billing_address, shipping_address, company_name, vat_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+customerColumns,
		strings.TrimSpace(input.Name),
		input.Email,
		input.Phone,
		input.BillingAddress,
		input.ShippingAddress,
		input.CompanyName,
		input.VATNumber,
	)
	customer, err := scanCustomer(row)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return customer, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id int64, input service.CustomerInput) (*domain.Customer, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, billing_address = $5, shipping_address = $6,
			company_name = $7, vat_number = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING `+customerColumns,
		id,
		strings.TrimSpace(input.Name),
		input.Email,
		input.Phone,
		input.BillingAddress,
		input.ShippingAddress,
		input.CompanyName,
		input.VATNumber,
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	return &customer, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const bankAccountColumns = `
	id, seller_id, account_title, iban, swift, bank_name, is_default, created_at, updated_at
`

func (s *Store) ListBankAccounts(ctx context.Context, sellerID *int64) ([]domain.BankAccount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bankAccountColumns+`
		FROM bank_accounts
		WHERE ($1::bigint IS NULL OR seller_id = $1)
		ORDER BY is_default DESC, account_title ASC
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.BankAccount, 0)
	for rows.Next() {
		account, err := scanBankAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bank accounts: %w", err)
	}
	return accounts, nil
}

func (s *Store) InsertBankAccount(ctx context.Context, input service.BankAccountInput) (domain.BankAccount, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO bank_accounts (seller_id, account_title, iban, swift, bank_name, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+bankAccountColumns,
		input.SellerID,
		strings.TrimSpace(input.AccountTitle),
		input.IBAN,
		input.SWIFT,
		input.BankName,
		input.IsDefault,
	)
	account, err := scanBankAccount(row)
	if err != nil {
		return domain.BankAccount{}, fmt.Errorf("insert bank account: %w", err)
	}
	return account, nil
}

func (s *Store) UpdateBankAccount(ctx context.Context, id int64, input service.BankAccountInput) (*domain.BankAccount, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE bank_accounts
		SET seller_id = $2, account_title = $3, iban = $4, swift = $5, bank_name = $6, is_default = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+bankAccountColumns,
		id,
		input.SellerID,
		strings.TrimSpace(input.AccountTitle),
		input.IBAN,
		input.SWIFT,
		input.BankName,
		input.IsDefault,
	)
	account, err := scanBankAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update bank account %d: %w", id, err)
	}
	return &account, nil
}

func (s *Store) DeleteBankAccount(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, "DELETE FROM bank_accounts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete bank account %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) ClearDefaultBankAccount(ctx context.Context, sellerID *int64) error {
	if _, err := s.db.Exec(ctx, `
		UPDATE bank_accounts
		SET is_default = FALSE, updated_at = NOW()
		WHERE is_default
		  AND ($1::bigint IS NULL AND seller_id IS NULL OR seller_id = $1)
	`, sellerID); err != nil {
		return fmt.Errorf("clear default bank account: %w", err)
	}
	return nil
}

func scanSeller(row pgx.Row) (domain.Seller, error) {
	var seller domain.Seller
	if err := row.Scan(
		&seller.ID,
		&seller.Name,
		&seller.Email,
		&seller.Phone,
		&seller.Address,
		&seller.CompanyName,
		&seller.VATNumber,
		&seller.CreatedAt,
		&seller.UpdatedAt,
	); err != nil {
		return domain.Seller{}, err
	}
	return seller, nil
}

func scanCustomer(row pgx.Row) (domain.Customer, error) {
	var customer domain.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.BillingAddress,
		&customer.ShippingAddress,
		&customer.CompanyName,
		&customer.VATNumber,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func scanBankAccount(row pgx.Row) (domain.BankAccount, error) {
	var account domain.BankAccount
	if err := row.Scan(
		&account.ID,
		&account.SellerID,
		&account.AccountTitle,
		&account.IBAN,
		&account.SWIFT,
		&account.BankName,
		&account.IsDefault,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.BankAccount{}, err
	}
	return account, nil
}
