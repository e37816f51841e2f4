package records

import (
	"fmt"
	"io"

	"github.com/passagehealth/passage/schema"
)

// PrintStoreStatus prints store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Records Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Records: %d\n", status.TotalRecords)
	_, _ = fmt.Fprintf(w, "Unique Patients: %d\n", status.UniquePatients)
	if status.TotalRecords > 0 {
		_, _ = fmt.Fprintf(w, "Last Record: %s\n", status.LastRecordTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Record: %s\n", status.OldestRecordTime.Format("2006-01-02 15:04:05"))
	}
}
