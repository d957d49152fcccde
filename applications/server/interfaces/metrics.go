package interfaces

import "github.com/donmikel/uploadguard/applications/server/domain"

type Metrics interface {
	UploadDecided(transport domain.Transport, reason domain.Reason)
	FileServed(contentType string)
}
