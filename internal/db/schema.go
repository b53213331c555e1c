package db

var embeddedSchema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name       TEXT    NOT NULL,
		age             INTEGER NOT NULL,
		address         TEXT    NOT NULL,
		email           TEXT    NOT NULL UNIQUE,
		phone           TEXT    NOT NULL,
		company         TEXT    NOT NULL DEFAULT '',
		category        TEXT    NOT NULL DEFAULT 'Regular',
		status          TEXT    NOT NULL DEFAULT 'Active',
		registered_on   TEXT    NOT NULL,
		updated_at      TEXT    NOT NULL,
		notes           TEXT    NOT NULL DEFAULT '',
		total_purchases REAL    NOT NULL DEFAULT 0,
		purchase_count  INTEGER NOT NULL DEFAULT 0,
		last_purchase   TEXT,
		vip_discount    REAL    NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id    INTEGER NOT NULL REFERENCES customers(id),
		sale_date      TEXT    NOT NULL,
		sale_time      TEXT    NOT NULL,
		products       TEXT    NOT NULL,
		total_value    REAL    NOT NULL,
		discount       REAL    NOT NULL DEFAULT 0,
		payment_method TEXT    NOT NULL DEFAULT 'Cash',
		seller         TEXT    NOT NULL DEFAULT '',
		notes          TEXT    NOT NULL DEFAULT ''
	)`,
}

var serverSchema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id              SERIAL PRIMARY KEY,
		full_name       VARCHAR(255)   NOT NULL,
		age             INTEGER        NOT NULL,
		address         TEXT           NOT NULL,
		email           VARCHAR(255)   NOT NULL UNIQUE,
		phone           VARCHAR(32)    NOT NULL,
		company         VARCHAR(255)   NOT NULL DEFAULT '',
		category        VARCHAR(32)    NOT NULL DEFAULT 'Regular',
		status          VARCHAR(32)    NOT NULL DEFAULT 'Active',
		registered_on   DATE           NOT NULL DEFAULT CURRENT_DATE,
		updated_at      TIMESTAMP      NOT NULL DEFAULT CURRENT_TIMESTAMP,
		notes           TEXT           NOT NULL DEFAULT '',
		total_purchases DECIMAL(12, 2) NOT NULL DEFAULT 0,
		purchase_count  INTEGER        NOT NULL DEFAULT 0,
		last_purchase   DATE,
		vip_discount    DECIMAL(4, 2)  NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id             SERIAL PRIMARY KEY,
		customer_id    INTEGER        NOT NULL REFERENCES customers(id),
		sale_date      DATE           NOT NULL DEFAULT CURRENT_DATE,
		sale_time      TIME           NOT NULL DEFAULT CURRENT_TIME,
		products       TEXT           NOT NULL,
		total_value    DECIMAL(12, 2) NOT NULL CHECK (total_value > 0),
		discount       DECIMAL(12, 2) NOT NULL DEFAULT 0,
		payment_method VARCHAR(32)    NOT NULL DEFAULT 'Cash',
		seller         VARCHAR(255)   NOT NULL DEFAULT '',
		notes          TEXT           NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_full_name ON customers (full_name)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_email ON customers (email)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_category ON customers (category)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales (sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_customer_id ON sales (customer_id)`,
}
