package deployclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	ocodes "go.opentelemetry.io/otel/codes"

	"github.com/ptah-sh/deploy-action/pkg/metrics"
	"github.com/ptah-sh/deploy-action/pkg/processes"
	"github.com/ptah-sh/deploy-action/pkg/telemetry"
	"github.com/ptah-sh/deploy-action/pkg/version"
)

const (
	DefaultServerAddress = "https://ctl.ptah.sh"

	DeployAPIPath   = "/api/v0/services/%s/deploy"
	DeploymentsPath = "/services/%s/deployments"

	RequestIDHeader = "X-Request-ID"
	UserAgent       = "ptah-deploy-action"
)

var ErrDeploymentIDMissing = errors.New("Deployment ID not found in API response")

// DeploymentResult is what the control plane handed back for an accepted deployment.
type DeploymentResult struct {
	DeploymentID string
	RequestID    string

	// Link points at the service's deployment list; there is no page for a single deployment.
	Link string

	// Response is the decoded response body.
	Response any
}

// Submitter sends deployment requests to a Ptah control plane.
type Submitter struct {
	Client        *http.Client
	ServerAddress string
	APIKey        string
}

func (s *Submitter) baseURL() string {
	return strings.TrimRight(s.ServerAddress, "/")
}

func (s *Submitter) DeployURL(service string) string {
	return s.baseURL() + fmt.Sprintf(DeployAPIPath, url.PathEscape(service))
}

func (s *Submitter) DeploymentsURL(service string) string {
	return s.baseURL() + fmt.Sprintf(DeploymentsPath, url.PathEscape(service))
}

// Submit makes a single deployment request for service and returns the deployment identifier.
//
// Only a 200 response is a success, and its body must carry a deployment_id.
// There are no retries.
func (s *Submitter) Submit(ctx context.Context, service string, processList []processes.ProcessSpec) (*DeploymentResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "Send deployment request")
	defer span.End()

	span.SetAttributes(
		telemetry.AttributeService.String(service),
		telemetry.AttributeProcessCount.Int(len(processList)),
	)

	result, err := s.submit(ctx, service, processList)
	if err != nil {
		span.SetStatus(ocodes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(telemetry.AttributeDeploymentID.String(result.DeploymentID))

	return result, nil
}

func (s *Submitter) submit(ctx context.Context, service string, processList []processes.ProcessSpec) (*DeploymentResult, error) {
	payload, err := json.Marshal(MakeDeploymentRequest(processList))
	if err != nil {
		return nil, ErrorWrap(ExitInternalError, fmt.Errorf("marshal deployment request: %w", err))
	}

	requestID := uuid.New().String()
	targetURL := s.DeployURL(service)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(payload))
	if err != nil {
		return nil, Errorf(ExitInvocationFailure, "API call failed: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent+"/"+version.Version())
	req.Header.Set(RequestIDHeader, requestID)
	telemetry.Inject(ctx, req.Header)

	logger := log.WithField("request_id", requestID)
	if traceParent := telemetry.TraceParentHeader(ctx); len(traceParent) > 0 {
		logger = logger.WithField("traceparent", traceParent)
	}
	logger.Debugf("Submitting deployment request to %s...", targetURL)

	start := time.Now()
	resp, err := s.client().Do(req)
	if err != nil {
		metrics.APIRequest(start, 0, err)
		return nil, Errorf(ExitTransportError, "API call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequest(start, resp.StatusCode, err)
		return nil, Errorf(ExitTransportError, "API call failed: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err = Errorf(ExitProtocolError, "API call failed with status %d", resp.StatusCode)
		metrics.APIRequest(start, resp.StatusCode, err)
		logger.Debugf("Response body: %s", body)
		return nil, err
	}

	metrics.APIRequest(start, resp.StatusCode, nil)

	log.Info("Deployment initiated successfully")
	log.Infof("API Response: %s", bytes.TrimSpace(body))

	var response any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&response); err != nil {
		logger.Warnf("Unable to decode API response: %s", err)
	}

	var fields map[string]any
	fields, _ = response.(map[string]any)

	deploymentID := identifier(fields["deployment_id"])
	if len(deploymentID) == 0 {
		return nil, ErrorWrap(ExitContractError, fmt.Errorf("API call failed: %w", ErrDeploymentIDMissing))
	}

	result := &DeploymentResult{
		DeploymentID: deploymentID,
		RequestID:    requestID,
		Link:         s.DeploymentsURL(service),
		Response:     response,
	}

	log.Infof("Deployment initiated successfully. Link: %s", result.Link)

	return result, nil
}

func (s *Submitter) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

// identifier renders a deployment_id value as a string.
// Missing, null, false, zero and empty values yield an empty string.
func identifier(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return ""
	case json.Number:
		f, err := v.Float64()
		if err == nil && f == 0 {
			return ""
		}
		return v.String()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
