package matroska

// Version constants for this parser package itself, not to be confused
// with the document's EBML/DocType versions (those live on EBMLHeader).
const (
	VersionMajor    = 1
	VersionMinor    = 0
	VersionBuild    = 0
	VersionRevision = 0
)

// Version returns the package's major/minor/build/revision numbers.
func Version() (major, minor, build, revision int) {
	return VersionMajor, VersionMinor, VersionBuild, VersionRevision
}
