package db

// Statements is the SQL text a backend speaks. Each backend builds its set once at
// construction. Embedded statements use numbered positional placeholders, so the
// params passed with a statement must follow the order noted on each field. Server
// statements use the same names with @ placeholders.
type Statements struct {
	// ── Customers ────────────────────────────────────────────────────────────

	// full_name, age, address, email, phone, company, category, status,
	// registered_on, updated_at, notes, total_purchases, purchase_count,
	// last_purchase, vip_discount
	InsertCustomer string
	// full_name, age, address, email, phone, company, category, status,
	// updated_at, notes, total_purchases, purchase_count, last_purchase,
	// vip_discount, id
	UpdateCustomer string
	// id
	GetCustomer string
	// email
	GetCustomerByEmail string
	ListCustomers      string
	// pattern
	SearchCustomers string
	// id
	DeleteCustomer string
	// id
	CountSalesForCustomer string
	CountCustomers        string
	CustomerEmails        string

	// ── Sales ────────────────────────────────────────────────────────────────

	// customer_id, sale_date, sale_time, products, total_value, discount,
	// payment_method, seller, notes
	InsertSale string
	// customer_id
	ListSalesForCustomer string
	ListSales            string
	ListAllSales         string
	// day
	ListSalesForDay string
	// customer_id, sale_date, sale_time, total_value
	CountEquivalentSales string
	CountSales           string

	// ── Statistics ───────────────────────────────────────────────────────────

	// status
	CountCustomersByStatus string
	// category
	CountCustomersByCategory string
	// month (YYYY-MM)
	MonthSalesSummary string
	SalesSummary      string
	// status
	TopCustomers string
	// status
	CategoryBreakdown string
}

const customerColumns = `id, full_name, age, address, email, phone, company, category, status,
		       registered_on, updated_at, notes, total_purchases, purchase_count,
		       last_purchase, vip_discount`

const saleColumns = `id, customer_id, sale_date, sale_time, products, total_value, discount,
		       payment_method, seller, notes`

const joinedSaleColumns = `s.id, s.customer_id, s.sale_date, s.sale_time, s.products, s.total_value,
		       s.discount, s.payment_method, s.seller, s.notes,
		       c.full_name AS customer_name, c.email AS customer_email,
		       c.category AS customer_category`

func embeddedStatements() *Statements {
	return &Statements{
		InsertCustomer: `
		INSERT INTO customers (full_name, age, address, email, phone, company, category, status,
		                       registered_on, updated_at, notes, total_purchases, purchase_count,
		                       last_purchase, vip_discount)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11, ?12, ?13, ?14, ?15)`,
		UpdateCustomer: `
		UPDATE customers
		SET full_name = ?1, age = ?2, address = ?3, email = ?4, phone = ?5, company = ?6,
		    category = ?7, status = ?8, updated_at = ?9, notes = ?10, total_purchases = ?11,
		    purchase_count = ?12, last_purchase = ?13, vip_discount = ?14
		WHERE id = ?15`,
		GetCustomer: `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = ?1`,
		GetCustomerByEmail: `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE email = ?1`,
		ListCustomers: `
		SELECT ` + customerColumns + `
		FROM customers
		ORDER BY full_name ASC`,
		SearchCustomers: `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE lower(full_name) LIKE lower(?1) ESCAPE '\'
		   OR lower(email) LIKE lower(?1) ESCAPE '\'
		   OR lower(company) LIKE lower(?1) ESCAPE '\'
		ORDER BY full_name ASC`,
		DeleteCustomer:        `DELETE FROM customers WHERE id = ?1`,
		CountSalesForCustomer: `SELECT COUNT(*) AS n FROM sales WHERE customer_id = ?1`,
		CountCustomers:        `SELECT COUNT(*) AS n FROM customers`,
		CustomerEmails:        `SELECT id, email FROM customers`,

		InsertSale: `
		INSERT INTO sales (customer_id, sale_date, sale_time, products, total_value, discount,
		                   payment_method, seller, notes)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9)`,
		ListSalesForCustomer: `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE customer_id = ?1
		ORDER BY sale_date DESC, sale_time DESC, id DESC`,
		ListSales: `
		SELECT ` + saleColumns + `
		FROM sales
		ORDER BY id ASC`,
		ListAllSales: `
		SELECT ` + joinedSaleColumns + `
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		ORDER BY s.sale_date DESC, s.sale_time DESC, s.id DESC`,
		ListSalesForDay: `
		SELECT ` + joinedSaleColumns + `
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		WHERE s.sale_date = ?1
		ORDER BY s.sale_time DESC, s.id DESC`,
		CountEquivalentSales: `
		SELECT COUNT(*) AS n
		FROM sales
		WHERE customer_id = ?1 AND sale_date = ?2 AND sale_time = ?3 AND total_value = ?4`,
		CountSales: `SELECT COUNT(*) AS n FROM sales`,

		CountCustomersByStatus:   `SELECT COUNT(*) AS n FROM customers WHERE status = ?1`,
		CountCustomersByCategory: `SELECT COUNT(*) AS n FROM customers WHERE category = ?1`,
		MonthSalesSummary: `
		SELECT COUNT(*) AS n, COALESCE(SUM(total_value), 0) AS revenue
		FROM sales
		WHERE sale_date LIKE ?1 || '%'`,
		SalesSummary: `
		SELECT COUNT(*) AS n, COALESCE(AVG(total_value), 0) AS average
		FROM sales`,
		TopCustomers: `
		SELECT full_name, total_purchases
		FROM customers
		WHERE status = ?1
		ORDER BY total_purchases DESC
		LIMIT 5`,
		CategoryBreakdown: `
		SELECT category, COUNT(*) AS n
		FROM customers
		WHERE status = ?1
		GROUP BY category`,
	}
}

func serverStatements() *Statements {
	return &Statements{
		InsertCustomer: `
		INSERT INTO customers (full_name, age, address, email, phone, company, category, status,
		                       registered_on, updated_at, notes, total_purchases, purchase_count,
		                       last_purchase, vip_discount)
		VALUES (@full_name, @age, @address, @email, @phone, @company, @category, @status,
		        @registered_on, @updated_at, @notes, @total_purchases, @purchase_count,
		        @last_purchase, @vip_discount)
		RETURNING id`,
		UpdateCustomer: `
		UPDATE customers
		SET full_name = @full_name, age = @age, address = @address, email = @email,
		    phone = @phone, company = @company, category = @category, status = @status,
		    updated_at = @updated_at, notes = @notes, total_purchases = @total_purchases,
		    purchase_count = @purchase_count, last_purchase = @last_purchase,
		    vip_discount = @vip_discount
		WHERE id = @id`,
		GetCustomer: `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = @id`,
		GetCustomerByEmail: `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE email = @email`,
		ListCustomers: `
		SELECT ` + customerColumns + `
		FROM customers
		ORDER BY full_name ASC`,
		SearchCustomers: `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE full_name ILIKE @pattern ESCAPE '\'
		   OR email ILIKE @pattern ESCAPE '\'
		   OR company ILIKE @pattern ESCAPE '\'
		ORDER BY full_name ASC`,
		DeleteCustomer:        `DELETE FROM customers WHERE id = @id`,
		CountSalesForCustomer: `SELECT COUNT(*) AS n FROM sales WHERE customer_id = @id`,
		CountCustomers:        `SELECT COUNT(*) AS n FROM customers`,
		CustomerEmails:        `SELECT id, email FROM customers`,

		InsertSale: `
		INSERT INTO sales (customer_id, sale_date, sale_time, products, total_value, discount,
		                   payment_method, seller, notes)
		VALUES (@customer_id, @sale_date, @sale_time, @products, @total_value, @discount,
		        @payment_method, @seller, @notes)
		RETURNING id`,
		ListSalesForCustomer: `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE customer_id = @customer_id
		ORDER BY sale_date DESC, sale_time DESC, id DESC`,
		ListSales: `
		SELECT ` + saleColumns + `
		FROM sales
		ORDER BY id ASC`,
		ListAllSales: `
		SELECT ` + joinedSaleColumns + `
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		ORDER BY s.sale_date DESC, s.sale_time DESC, s.id DESC`,
		ListSalesForDay: `
		SELECT ` + joinedSaleColumns + `
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		WHERE s.sale_date = @day
		ORDER BY s.sale_time DESC, s.id DESC`,
		CountEquivalentSales: `
		SELECT COUNT(*) AS n
		FROM sales
		WHERE customer_id = @customer_id AND sale_date = @sale_date
		  AND sale_time = @sale_time AND total_value = @total_value`,
		CountSales: `SELECT COUNT(*) AS n FROM sales`,

		CountCustomersByStatus:   `SELECT COUNT(*) AS n FROM customers WHERE status = @status`,
		CountCustomersByCategory: `SELECT COUNT(*) AS n FROM customers WHERE category = @category`,
		MonthSalesSummary: `
		SELECT COUNT(*) AS n, COALESCE(SUM(total_value), 0) AS revenue
		FROM sales
		WHERE TO_CHAR(sale_date, 'YYYY-MM') = @month`,
		SalesSummary: `
		SELECT COUNT(*) AS n, COALESCE(AVG(total_value), 0) AS average
		FROM sales`,
		TopCustomers: `
		SELECT full_name, total_purchases
		FROM customers
		WHERE status = @status
		ORDER BY total_purchases DESC
		LIMIT 5`,
		CategoryBreakdown: `
		SELECT category, COUNT(*) AS n
		FROM customers
		WHERE status = @status
		GROUP BY category`,
	}
}
