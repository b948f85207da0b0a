package tablesync

var tableNames = map[DataType]string{
	DataTypeEmployees: "dashboard_employeesTable",
	DataTypeAnalytics: "dashboard_analyticsTable",
	DataTypeStats:     "dashboard_statsTable",
	DataTypeSessions:  "dashboard_sessionsTable",
}

// TableName returns the remote table that stores rows of the given type.
// Every write path resolves names through this function.
func TableName(dataType DataType) string {
	if name, ok := tableNames[dataType]; ok {
		return name
	}
	return "dashboard_" + string(dataType) + "Table"
}
