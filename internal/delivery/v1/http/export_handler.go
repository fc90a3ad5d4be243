package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
)

type ExportHandler struct {
	exportUC usecase.ExportUC
	logger   logger.Logger
}

func NewExportHandler(exportUC usecase.ExportUC, logger logger.Logger) *ExportHandler {
	return &ExportHandler{exportUC: exportUC, logger: logger}
}

// download
//
//	@Summary		Выгрузка журнала в xlsx
//	@Description	Лист на каждый терминал и лист ALL
//	@Tags			exports
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Security		BearerAuth
//	@Success		200	{file}	file
//	@Router			/exports/ledger.xlsx [get]
func (h *ExportHandler) download(w http.ResponseWriter, r *http.Request) {
	report, err := h.exportUC.BuildLedger(r.Context())
	if err != nil {
		h.logger.Errorf(err, "ledger export failed")
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Data)
}

// upload
//
//	@Summary		Выгрузка журнала в объектное хранилище
//	@Description	Возвращает временную ссылку на скачивание
//	@Tags			exports
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	ExportResponse
//	@Router			/exports/ledger [post]
func (h *ExportHandler) upload(w http.ResponseWriter, r *http.Request) {
	res, err := h.exportUC.ExportLedger(r.Context())
	if err != nil {
		h.logger.Errorf(err, "ledger upload failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, ExportResponse{Key: res.Key, URL: res.URL})
}
