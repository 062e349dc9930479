package rewrite

import "github.com/samber/oops"

func errExternalNotAllowed(modulePath string) error {
	return oops.Code("ExternalNotAllowed").
		With("path", modulePath).
		Errorf("module %s is flagged as an external reference, which the host-side scheme forbids", modulePath)
}

func errUnresolvableAsyncChunk(issuerPath string, chunkID int) error {
	return oops.Code("UnresolvableAsyncChunk").
		With("issuer", issuerPath).
		With("chunkId", chunkID).
		Errorf("async reference to chunk %d from %s does not resolve to any chunk in the compilation", chunkID, issuerPath)
}

func errUnknownModule(issuerPath string, moduleID int) error {
	return oops.Code("UnresolvableAsyncChunk").
		With("issuer", issuerPath).
		With("moduleId", moduleID).
		Errorf("require of module %d from %s does not resolve to any module in the compilation", moduleID, issuerPath)
}
