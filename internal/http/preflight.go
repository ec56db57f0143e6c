package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"

	"github.com/leafbridge/leafbridge/internal/types"
)

// preflightClient checks that layer tile templates resolve to reachable
// tiles before the host commits them to the engine.
type preflightClient struct {
	client *resty.Client
}

func newPreflightClient() *preflightClient {
	return &preflightClient{
		client: resty.New().
			SetTimeout(5 * time.Second).
			SetHeader("User-Agent", "leafbridge-preflight/0.3"),
	}
}

// PreflightResult reports reachability for one layer.
type PreflightResult struct {
	BaseLayerName string `json:"baseLayerName"`
	URL           string `json:"url"`
	OK            bool   `json:"ok"`
	Status        int    `json:"status,omitempty"`
	Error         string `json:"error,omitempty"`
}

// PreflightLayers HEAD-fetches one sample tile per submitted layer.
func (h *Handlers) PreflightLayers(c *gin.Context) {
	var req struct {
		MapLayers []types.MapLayer `json:"mapLayers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := make([]PreflightResult, 0, len(req.MapLayers))
	for _, layer := range req.MapLayers {
		results = append(results, h.preflight.check(layer))
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (p *preflightClient) check(layer types.MapLayer) PreflightResult {
	url := sampleTileURL(layer.URL)
	result := PreflightResult{BaseLayerName: layer.BaseLayerName, URL: url}

	resp, err := p.client.R().Head(url)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Status = resp.StatusCode()
	result.OK = resp.StatusCode() < 400
	return result
}

// sampleTileURL substitutes a fixed low-zoom tile into the layer's URL
// template ({s}/{z}/{x}/{y}, optional {r} retina suffix).
func sampleTileURL(template string) string {
	r := strings.NewReplacer(
		"{s}", "a",
		"{z}", "1",
		"{x}", "0",
		"{y}", "0",
		"{r}", "",
	)
	return r.Replace(template)
}
