package process

// Test exports.
var (
	ListProcExported      = listProc
	ParsePSExported       = parsePS
	ParseTasklistExported = parseTasklist
)
