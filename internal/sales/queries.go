package sales

// Statements sent to the query service. Values are bound through ? placeholders.
const (
	queryListProducts = `SELECT * FROM Products`

	queryRecordSale = `INSERT INTO Sales (product_id, total_amount, quantity) VALUES (?, ?, 1)`

	queryDeleteSale = `DELETE FROM Sales WHERE sale_id = ?`

	queryTotalRevenue = `SELECT SUM(total_amount) as total FROM Sales`

	// Ties on total_sales go to the lowest product_id.
	queryTopSeller = `
    SELECT s.product_id, p.item_name, COUNT(s.sale_id) as total_sales
    FROM Sales s
    JOIN Products p ON s.product_id = p.product_id
    GROUP BY s.product_id, p.item_name
    ORDER BY total_sales DESC, s.product_id ASC
    LIMIT 1`

	queryRecentTransactions = `
    SELECT s.sale_id, s.product_id, s.quantity, s.total_amount, s.sale_time, p.item_name, p.category
    FROM Sales s
    JOIN Products p ON s.product_id = p.product_id
    ORDER BY s.sale_time DESC
    LIMIT 10`
)

// RecentLimit is the maximum number of transactions on the dashboard.
const RecentLimit = 10
