package calc

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bendcalc/pkg/core/bend"
)

// Handler serves the calculation endpoint. It owns no state beyond the
// engine; every request is computed from scratch.
type Handler struct {
	engine *bend.Engine
}

func NewHandler(engine *bend.Engine) *Handler {
	return &Handler{engine: engine}
}

// FlangeView is one flange row as displayed.
type FlangeView struct {
	Entered      string `json:"entered"`
	Net          string `json:"net"`
	Half         string `json:"half"`
	BelowMinimum bool   `json:"below_minimum"`
}

// View is the calculation result with every quantity pre-formatted:
// two decimals throughout, tonnage rounded to whole tons, and "N/A"
// for anything that could not be derived.
type View struct {
	Deduction       string `json:"deduction"`
	DeductionSource string `json:"deduction_source"`
	UsedOverride    bool   `json:"used_override"`
	DeductionNote   string `json:"deduction_note,omitempty"`

	KFactor     string `json:"k_factor"`
	Offset      string `json:"offset"`
	RadiusRatio string `json:"radius_ratio"`
	MinFlange   string `json:"min_flange"`
	MinZ        string `json:"min_z"`
	Tonnage     string `json:"tonnage"`

	Flanges   [bend.MaxFlanges]FlangeView `json:"flanges"`
	Blank     string                      `json:"blank"`
	HalfBlank string                      `json:"half_blank"`

	ChannelFits *bool `json:"channel_fits,omitempty"`
}

// Calculate runs one calculation pass over the raw form values.
func (h *Handler) Calculate(c *gin.Context) {
	var in bend.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.engine.Compute(in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, render(res))
}

func render(res bend.Result) View {
	v := View{
		Deduction:       format2(res.DeductionValue),
		DeductionSource: res.DeductionSource,
		UsedOverride:    res.UsedOverride,
		DeductionNote:   res.DeductionNote,
		KFactor:         format2(res.KFactor),
		Offset:          format2(res.Offset),
		RadiusRatio:     format2(res.RadiusRatio),
		MinFlange:       format2(res.MinFlange),
		MinZ:            format2(res.MinZ),
		Tonnage:         format0(res.Tonnage),
		Blank:           format2(res.Blank),
		HalfBlank:       format2(res.HalfBlank),
		ChannelFits:     res.ChannelFits,
	}
	for i, f := range res.Flanges {
		v.Flanges[i] = FlangeView{
			Entered:      f.Entered,
			Net:          format2(f.Net),
			Half:         format2(f.Half),
			BelowMinimum: f.BelowMinimum,
		}
	}
	return v
}

func format2(q bend.Quantity) string {
	if !q.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", q.Value)
}

func format0(q bend.Quantity) string {
	if !q.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.0f", q.Value)
}
