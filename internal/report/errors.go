package report

import (
	"fmt"
	"strings"
)

// Kind classifies a fatal run error.
type Kind string

const (
	KindServiceUnavailable Kind = "service-unavailable"
	KindConnectionFailure  Kind = "connection-failure"
	KindQueryFailure       Kind = "query-failure"
	KindRenderFailure      Kind = "render-failure"
	KindFileWriteFailure   Kind = "file-write-failure"
	KindPublishFailure     Kind = "publish-failure"
)

// Error is a fatal run error with a checklist of likely causes for the operator.
type Error struct {
	Kind      Kind
	Err       error
	Checklist []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Diagnostic renders the error and its checklist for display.
func (e *Error) Diagnostic() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.Error())
	if len(e.Checklist) > 0 {
		b.WriteString("Please check:\n")
		for _, item := range e.Checklist {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	return b.String()
}

func serviceChecklist(manager, service string) []string {
	return []string{
		fmt.Sprintf("the %s service is installed (%s)", service, statusCommand(manager, service)),
		"this user is allowed to start services (administrator or sudo)",
	}
}

func connectionChecklist(driver, manager, service, dbName, dbPath string) []string {
	if driver == "sqlite" {
		return []string{
			fmt.Sprintf("the database file %s exists and is readable", dbPath),
		}
	}
	items := []string{
		"KRS_DB_USER and KRS_DB_PASSWORD are set and correct",
		fmt.Sprintf("the database %s exists", dbName),
	}
	if manager != "none" {
		items = append([]string{
			fmt.Sprintf("the database service is running (%s)", statusCommand(manager, service)),
		}, items...)
	} else {
		items = append([]string{"the database server is running and reachable"}, items...)
	}
	return items
}

func queryChecklist(table string) []string {
	return []string{
		fmt.Sprintf("the table %s exists", table),
		"it has the columns id, location, time_stamp, temp_c, humidity, cond, wind_kph, pressure_mb",
		"the connected user has SELECT permission on it",
	}
}

func writeChecklist(dir string) []string {
	return []string{
		fmt.Sprintf("the output directory %s is writable", dir),
		"the disk is not full",
	}
}

func publishChecklist(addr string) []string {
	return []string{
		fmt.Sprintf("the FTP server %s is reachable", addr),
		"KRS_FTP_USER and KRS_FTP_PASSWORD are correct",
		"the remote directory is writable",
	}
}

func statusCommand(manager, service string) string {
	switch manager {
	case "windows":
		return "sc query " + service
	case "systemd":
		return "systemctl status " + service
	default:
		return "check it is started"
	}
}
