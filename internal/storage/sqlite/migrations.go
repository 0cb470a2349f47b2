package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: dish_orders must be created BEFORE dish_options due to the
// foreign key constraint.
const schema = `
CREATE TABLE IF NOT EXISTS dish_orders (
    id TEXT PRIMARY KEY,
    table_id TEXT NOT NULL,
    item TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    unit_price REAL NOT NULL,
    total_price REAL NOT NULL,
    guest_name TEXT NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    guest_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    payment_status TEXT NOT NULL DEFAULT 'not_paid',
    images TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dish_options (
    dish_order_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    price REAL NOT NULL,
    PRIMARY KEY (dish_order_id, position),
    FOREIGN KEY (dish_order_id) REFERENCES dish_orders(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS table_payments (
    id TEXT PRIMARY KEY,
    table_id TEXT NOT NULL,
    amount REAL NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    table_id TEXT NOT NULL,
    identity_key TEXT NOT NULL,
    guest_name TEXT NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    guest_id TEXT NOT NULL DEFAULT '',
    total_paid_individual REAL NOT NULL DEFAULT 0,
    total_paid_split REAL NOT NULL DEFAULT 0,
    total_paid_amount REAL NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (table_id, identity_key)
);

CREATE TABLE IF NOT EXISTS split_sessions (
    table_id TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS split_shares (
    table_id TEXT NOT NULL,
    participant TEXT NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    expected_amount REAL NOT NULL,
    amount_paid REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    paid_at INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (table_id, participant),
    FOREIGN KEY (table_id) REFERENCES split_sessions(table_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_dish_orders_table_id ON dish_orders(table_id);
CREATE INDEX IF NOT EXISTS idx_dish_options_order_id ON dish_options(dish_order_id);
CREATE INDEX IF NOT EXISTS idx_table_payments_table_id ON table_payments(table_id);
CREATE INDEX IF NOT EXISTS idx_split_shares_table_id ON split_shares(table_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
