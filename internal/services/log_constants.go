package services

const (
	LogActionListingScan    = "LISTING_SCAN"
	LogActionFileDownload   = "FILE_DOWNLOAD"
	LogActionDigestDownload = "DIGEST_DOWNLOAD"
	LogActionFileLoad       = "FILE_LOAD"
	LogActionDataStore      = "DATA_STORE"
	LogActionEnrichAPI      = "ENRICH_API_CALL"
	LogActionEnrichStore    = "ENRICH_STORE"
	LogActionDocDownload    = "DOC_DOWNLOAD"
	LogActionPipeline       = "PIPELINE_REFRESH"
	LogOutcomeSuccess       = "SUCCESS"
	LogOutcomeFail          = "FAIL"
)
