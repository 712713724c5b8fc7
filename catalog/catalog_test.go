// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockIndexPage = `<html><body>
<div class="content">
  <h4> Sentinel-2A </h4>
  <p>Latest plans first</p>
  <ul>
    <li><a href="https://sentinels.copernicus.eu/documents/d/sentinel/s2a_mp_acq__kml_20241010t120000_20241028t150000?download=true">Plan A</a></li>
    <li><a href="https://sentinels.copernicus.eu/documents/d/sentinel/s2a_old">Older</a></li>
  </ul>
  <h4>Sentinel-2B</h4>
  <ul>
    <li><span>no link here</span></li>
  </ul>
  <h4>Sentinel-2C</h4>
  <ul>
    <li><a href="/documents/d/sentinel/s2c_mp_acq__kml_20241011t120000_20241029t150000">Plan C</a></li>
  </ul>
</div>
</body></html>`

func newIndexServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestResolve_Success(t *testing.T) {
	server := newIndexServer(http.StatusOK, mockIndexPage)
	defer server.Close()

	// Tested code
	ids, err := NewResolver(server.URL, util.HTTPClient(time.Second), 1).
		Resolve(context.Background(), []string{"Sentinel-2A", "Sentinel-2B", "Sentinel-2C", "Sentinel-2D"})

	// Asserts
	require.Nil(t, err)
	assert.Equal(t, map[string]string{
		"Sentinel-2A": "s2a_mp_acq__kml_20241010t120000_20241028t150000",
		"Sentinel-2C": "s2c_mp_acq__kml_20241011t120000_20241029t150000",
	}, ids)
}

func TestResolve_Error(t *testing.T) {
	server := newIndexServer(http.StatusInternalServerError, "")
	defer server.Close()

	_, err := NewResolver(server.URL, util.HTTPClient(time.Second), 1).Resolve(context.Background(), []string{"Sentinel-2A"})

	assert.True(t, errors.Is(err, ErrIndexFetch))
}

func TestResolve_Unreachable(t *testing.T) {
	server := newIndexServer(http.StatusOK, mockIndexPage)
	url := server.URL
	server.Close()

	_, err := NewResolver(url, util.HTTPClient(time.Second), 1).Resolve(context.Background(), []string{"Sentinel-2A"})

	assert.True(t, errors.Is(err, ErrIndexFetch))
}

func TestResolve_UnrelatedLink(t *testing.T) {
	server := newIndexServer(http.StatusOK, `<h4>Sentinel-2A</h4><ul><li><a href="https://example.localhost/other/file.kml">x</a></li></ul>`)
	defer server.Close()

	ids, err := NewResolver(server.URL, util.HTTPClient(time.Second), 1).Resolve(context.Background(), []string{"Sentinel-2A"})

	assert.Nil(t, err)
	assert.Empty(t, ids)
}

func TestLayerCode(t *testing.T) {
	assert.Equal(t, "S2A", LayerCode("s2a_mp_acq__kml_20241010t120000_20241028t150000", "Sentinel-2A"))
	assert.Equal(t, "S2B", LayerCode("folder/s2b_plan.kml", "Sentinel-2B"))
	assert.Equal(t, "SEN", LayerCode("", "Sentinel-2C"))
	assert.Equal(t, "AB", LayerCode("ab", "Sentinel-2C"))
}

func TestLayerCode_UpperCaseExtension(t *testing.T) {
	assert.Equal(t, "AB", LayerCode("ab.KML", "Sentinel-2C"))
	assert.Equal(t, "S2B", LayerCode("S2B.Kml", "Sentinel-2B"))
}
