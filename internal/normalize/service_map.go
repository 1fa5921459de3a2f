package normalize

var commonPorts = map[uint16]string{
	20:   "ftp-data",
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "dns",
	80:   "http",
	110:  "pop3",
	143:  "imap",
	443:  "https",
	445:  "smb",
	3306: "mysql",
	3389: "rdp",
	5432: "postgresql",
	6379: "redis",
	8080: "http-alt",
}

// serviceName returns the well-known name for a port, or "" when the port
// is not in the table.
func serviceName(port uint16) string {
	return commonPorts[port]
}
