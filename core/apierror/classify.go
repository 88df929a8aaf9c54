package apierror

import (
	"errors"
	"strings"

	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/invoke"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/provider"
	"github.com/artpar/cloudrest/domain"
	"github.com/artpar/cloudrest/domain/compute"
	"github.com/artpar/cloudrest/domain/dns"
	"github.com/artpar/cloudrest/domain/loadbalancer"
	"github.com/artpar/cloudrest/domain/storage"
)

// driverErrors maps driver sentinels to their class.
var driverErrors = []struct {
	err  error
	kind Kind
}{
	{compute.ErrNodeDoesNotExist, NoSuchObject.With("node")},
	{compute.ErrSizeDoesNotExist, NoSuchObject.With("size")},
	{compute.ErrImageDoesNotExist, NoSuchObject.With("image")},
	{compute.ErrLocationDoesNotExist, NoSuchObject.With("location")},
	{loadbalancer.ErrBalancerDoesNotExist, NoSuchObject.With("load balancer")},
	{loadbalancer.ErrMemberDoesNotExist, NoSuchObject.With("member")},
	{storage.ErrObjectDoesNotExist, NoSuchObject.With("object")},
	{dns.ErrZoneDoesNotExist, NoSuchZone},
	{dns.ErrZoneAlreadyExists, ZoneAlreadyExists},
	{dns.ErrRecordDoesNotExist, NoSuchRecord},
	{dns.ErrRecordAlreadyExists, RecordAlreadyExists},
	{storage.ErrContainerDoesNotExist, NoSuchContainer},
	{storage.ErrContainerAlreadyExists, ContainerAlreadyExists},
	{storage.ErrContainerIsNotEmpty, ContainerIsNotEmpty},
	{dns.ErrUnsupportedRecordType, Validation},
	{loadbalancer.ErrUnsupportedAlgorithm, Validation},
	{domain.ErrInvalidCredential, Validation},
}

// From classifies err. Classified errors are returned as they are.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var (
		malformed *invoke.MalformedJSONError
		missing   *entry.MissingArgumentsError
		invalid   *entry.ValidationError
		tooMany   *entry.TooManyArgumentsError
		value     *invoke.ValueError
		headers   *provider.MissingHeadersError
		unknown   *provider.UnknownHeadersError
		notSup    *provider.NotSupportedError
	)
	switch {
	case errors.As(err, &malformed):
		return MalformedJSON.Wrap(err)
	case errors.As(err, &missing):
		return MissingArguments.With(strings.Join(missing.Names(), ", ")).Wrap(err)
	case errors.As(err, &invalid), errors.As(err, &value):
		return Validation.Wrap(err)
	case errors.As(err, &tooMany):
		return TooManyArguments.Wrap(err)
	case errors.As(err, &headers):
		return MissingHeaders.With(headers.Headers()).Wrap(err)
	case errors.As(err, &unknown):
		return UnknownHeaders.With(strings.Join(unknown.Headers, ", ")).Wrap(err)
	case errors.As(err, &notSup):
		return ProviderNotSupported.With(notSup.Provider).Wrap(err)
	case errors.Is(err, method.ErrUnknownMethod):
		return NoSuchOperation.Wrap(err)
	}

	for _, d := range driverErrors {
		if errors.Is(err, d.err) {
			return d.kind.Wrap(err)
		}
	}

	var (
		providerErr *domain.ProviderError
		invocation  *invoke.InvocationError
		build       *method.BuildError
	)
	switch {
	case errors.As(err, &providerErr):
		return ProviderFailure.Wrap(err)
	case errors.As(err, &invocation), errors.As(err, &build), errors.Is(err, entry.ErrCannotRepresent):
		return Internal.Wrap(err)
	}
	return Unknown.Wrap(err)
}
