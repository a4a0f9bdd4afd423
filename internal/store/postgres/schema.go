package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the full database schema. Every statement is idempotent.
const schema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS app_users (
    username   TEXT PRIMARY KEY,
    password   TEXT NOT NULL,
    role       TEXT NOT NULL CHECK (role IN ('OWNER', 'ADMIN', 'KASIR')),
    active     BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS categories (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    kind       TEXT NOT NULL CHECK (kind IN ('PRODUCT', 'MENU')),
    is_active  BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    category_id      TEXT REFERENCES categories(id),
    type             TEXT NOT NULL CHECK (type IN ('SELL', 'RENT')),
    price_cents      BIGINT NOT NULL CHECK (price_cents >= 0),
    cost_price_cents BIGINT,
    stock            INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
    is_active        BOOLEAN NOT NULL DEFAULT true,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS menus (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    category_id      TEXT REFERENCES categories(id),
    price_cents      BIGINT NOT NULL CHECK (price_cents >= 0),
    cost_price_cents BIGINT,
    stock            INTEGER CHECK (stock IS NULL OR stock >= 0),
    is_active        BOOLEAN NOT NULL DEFAULT true,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS dining_tables (
    id                    TEXT PRIMARY KEY,
    code                  TEXT NOT NULL UNIQUE,
    status                TEXT NOT NULL DEFAULT 'EMPTY' CHECK (status IN ('EMPTY', 'OCCUPIED')),
    current_customer_name TEXT,
    occupied_at           TIMESTAMPTZ,
    is_active             BOOLEAN NOT NULL DEFAULT true,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK ((status = 'OCCUPIED') = (current_customer_name IS NOT NULL AND occupied_at IS NOT NULL))
);

CREATE TABLE IF NOT EXISTS courts (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    description          TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'MAINTENANCE', 'INACTIVE')),
    price_per_hour_cents BIGINT NOT NULL CHECK (price_per_hour_cents >= 0),
    is_visible           BOOLEAN NOT NULL DEFAULT true,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS number_sequences (
    scope TEXT NOT NULL,
    day   DATE NOT NULL,
    value INTEGER NOT NULL,
    PRIMARY KEY (scope, day)
);

CREATE TABLE IF NOT EXISTS transactions (
    id             TEXT PRIMARY KEY,
    invoice_number TEXT NOT NULL UNIQUE,
    type           TEXT NOT NULL CHECK (type IN ('POS', 'RENTAL', 'BOOKING')),
    table_id       TEXT REFERENCES dining_tables(id),
    customer_name  TEXT NOT NULL DEFAULT '',
    payment_method TEXT NOT NULL DEFAULT '',
    total_cents    BIGINT NOT NULL,
    paid_cents     BIGINT NOT NULL DEFAULT 0,
    change_cents   BIGINT NOT NULL DEFAULT 0 CHECK (change_cents >= 0),
    deposit_cents  BIGINT NOT NULL DEFAULT 0,
    status         TEXT NOT NULL CHECK (status IN ('PENDING', 'PAID', 'CANCELLED', 'COMPLETED')),
    notes          TEXT NOT NULL DEFAULT '',
    created_by     TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);

CREATE TABLE IF NOT EXISTS transaction_items (
    id               TEXT PRIMARY KEY,
    transaction_id   TEXT NOT NULL REFERENCES transactions(id),
    item_type        TEXT NOT NULL CHECK (item_type IN ('PRODUCT', 'MENU', 'BOOKING')),
    item_id          TEXT NOT NULL,
    name             TEXT NOT NULL,
    quantity         INTEGER NOT NULL CHECK (quantity > 0),
    unit_price_cents BIGINT NOT NULL,
    subtotal_cents   BIGINT NOT NULL,
    notes            TEXT NOT NULL DEFAULT '',
    position         INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_transaction_items_tx ON transaction_items(transaction_id);

CREATE TABLE IF NOT EXISTS product_sell_records (
    id               TEXT PRIMARY KEY,
    transaction_id   TEXT NOT NULL REFERENCES transactions(id),
    product_id       TEXT NOT NULL REFERENCES products(id),
    quantity         INTEGER NOT NULL CHECK (quantity > 0),
    unit_price_cents BIGINT NOT NULL,
    subtotal_cents   BIGINT NOT NULL,
    status           TEXT NOT NULL CHECK (status IN ('ACTIVE', 'CANCELLED')),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS product_rent_records (
    id                 TEXT PRIMARY KEY,
    transaction_id     TEXT NOT NULL REFERENCES transactions(id),
    product_id         TEXT NOT NULL REFERENCES products(id),
    quantity           INTEGER NOT NULL CHECK (quantity > 0),
    unit_price_cents   BIGINT NOT NULL,
    subtotal_cents     BIGINT NOT NULL,
    status             TEXT NOT NULL CHECK (status IN ('ACTIVE', 'RETURNED', 'CANCELLED')),
    expected_return_at TIMESTAMPTZ,
    returned_at        TIMESTAMPTZ,
    notes              TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
    id                   TEXT PRIMARY KEY,
    booking_number       TEXT NOT NULL UNIQUE,
    court_id             TEXT NOT NULL REFERENCES courts(id),
    customer_name        TEXT NOT NULL,
    customer_phone       TEXT NOT NULL,
    customer_email       TEXT,
    start_time           TIMESTAMPTZ NOT NULL,
    end_time             TIMESTAMPTZ NOT NULL,
    duration_hours       NUMERIC(8,2) NOT NULL,
    price_per_hour_cents BIGINT NOT NULL,
    total_cents          BIGINT NOT NULL,
    paid_cents           BIGINT NOT NULL DEFAULT 0,
    payment_status       TEXT NOT NULL CHECK (payment_status IN ('UNPAID', 'PARTIAL', 'PAID')),
    booking_status       TEXT NOT NULL CHECK (booking_status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'COMPLETED')),
    transaction_id       TEXT REFERENCES transactions(id),
    notes                TEXT NOT NULL DEFAULT '',
    created_by           TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (end_time > start_time)
);

CREATE TABLE IF NOT EXISTS order_requests (
    id              TEXT PRIMARY KEY,
    order_number    TEXT NOT NULL UNIQUE,
    table_id        TEXT NOT NULL REFERENCES dining_tables(id),
    table_code      TEXT NOT NULL,
    customer_name   TEXT NOT NULL,
    status          TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'PREPARING', 'SERVED', 'REJECTED', 'CANCELLED')),
    total_cents     BIGINT NOT NULL,
    notes           TEXT NOT NULL DEFAULT '',
    approved_by     TEXT,
    approved_at     TIMESTAMPTZ,
    rejected_reason TEXT,
    transaction_id  TEXT REFERENCES transactions(id),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_request_items (
    id               TEXT PRIMARY KEY,
    order_request_id TEXT NOT NULL REFERENCES order_requests(id),
    menu_id          TEXT NOT NULL REFERENCES menus(id),
    name             TEXT NOT NULL,
    quantity         INTEGER NOT NULL CHECK (quantity > 0),
    unit_price_cents BIGINT NOT NULL,
    subtotal_cents   BIGINT NOT NULL,
    notes            TEXT NOT NULL DEFAULT '',
    position         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    unit       TEXT NOT NULL DEFAULT 'pcs',
    quantity   INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    is_active  BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inventory_adjustments (
    id              TEXT PRIMARY KEY,
    inventory_id    TEXT NOT NULL REFERENCES inventory_items(id),
    change_type     TEXT NOT NULL CHECK (change_type IN ('ADD', 'REMOVE', 'CORRECTION')),
    quantity_before INTEGER NOT NULL,
    quantity_after  INTEGER NOT NULL CHECK (quantity_after >= 0),
    change_amount   INTEGER NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    actor           TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (quantity_after = quantity_before + change_amount)
);

CREATE INDEX IF NOT EXISTS idx_inventory_adjustments_item ON inventory_adjustments(inventory_id, created_at);

CREATE TABLE IF NOT EXISTS notifications (
    id          TEXT PRIMARY KEY,
    type        TEXT NOT NULL,
    title       TEXT NOT NULL,
    message     TEXT NOT NULL,
    payload     JSONB,
    target_user TEXT,
    is_read     BOOLEAN NOT NULL DEFAULT false,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id             TEXT PRIMARY KEY,
    actor_username TEXT NOT NULL,
    actor_role     TEXT NOT NULL,
    action         TEXT NOT NULL,
    entity_type    TEXT NOT NULL,
    entity_id      TEXT NOT NULL,
    detail         TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// migrations are applied in order after schema creation. Each one must be
// idempotent. Append new migrations at the end.
var migrations = []string{
	// Backstop for the booking overlap check: no two live bookings on one
	// court may share any instant of [start_time, end_time).
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
			ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
				EXCLUDE USING gist (court_id WITH =, tstzrange(start_time, end_time, '[)') WITH &&)
				WHERE (booking_status <> 'CANCELLED');
		END IF;
	END $$`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_court_time ON bookings(court_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_rent_records_status ON product_rent_records(status) WHERE status = 'ACTIVE'`,
}

// Migrate creates the schema and applies pending migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
