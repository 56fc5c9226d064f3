package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"

	db "github.com/cloud-lever/roap/storage"
	"github.com/cloud-lever/roap/types"
	"github.com/cloud-lever/roap/util"
)

var log = logging.MustGetLogger("roap")
var systemConfiguration util.SystemConfiguration

//Set up server routes
func SetUpServer(sysConfiguration util.SystemConfiguration) *gin.Engine {
	systemConfiguration = sysConfiguration
	router := gin.Default()
	router.POST("/api/problems", solveProblem)
	router.GET("/api/solutions", getSolutions)
	router.GET("/api/solutions/:id", solutionByID)
	router.DELETE("/api/solutions/:id", deleteSolutionByID)
	return router
}

//Start the REST service
func Start(port string, configFile string) {
	sysConfiguration, err := util.ReadConfigFile(configFile)
	if err != nil {
		log.Warning("Could not read the configuration file %s, using defaults: %s",
			configFile, err.Error())
	}
	router := SetUpServer(sysConfiguration)
	router.Run(":" + port)
}

func connectDAO(c *gin.Context) *db.SolutionDAO {
	solutionDAO := db.GetSolutionDAO(
		systemConfiguration.StorageComponent.Server,
		systemConfiguration.StorageComponent.Database)
	if _, err := solutionDAO.Connect(); err != nil {
		c.JSON(http.StatusInternalServerError, err.Error())
		return nil
	}
	return solutionDAO
}

// This handler receives a problem document in the request body, solves the
// problem given in the query parameter and stores the solutions.
// The request matches: /api/problems?problem=id1&phase-ii=true
func solveProblem(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, err.Error())
		return
	}
	problems, err := util.ProblemsFromYAML(body, ".")
	if err != nil {
		c.JSON(http.StatusBadRequest, err.Error())
		return
	}
	problemID := c.Query("problem")
	problem, ok := problems[problemID]
	if !ok {
		c.JSON(http.StatusBadRequest, "Problem "+problemID+" is not in the document")
		return
	}

	solutionI, solutionII, err := solveBothPhases(problem, c.Query("phase-ii") == "true")
	if err != nil {
		c.JSON(http.StatusBadRequest, err.Error())
		return
	}

	solutionDAO := connectDAO(c)
	if solutionDAO == nil {
		return
	}
	if err := solutionDAO.InsertPhaseI(solutionI); err != nil {
		log.Error("Error storing the phase I solution: %s", err.Error())
	}
	if solutionII != nil {
		if err := solutionDAO.InsertPhaseII(solutionII); err != nil {
			log.Error("Error storing the phase II solution: %s", err.Error())
		}
	}

	response := gin.H{"phase_i": solutionI}
	if solutionII != nil {
		response["phase_ii"] = solutionII
	}
	c.JSON(http.StatusOK, response)
}

// This handler retrieves the stored solutions of both phases
func getSolutions(c *gin.Context) {
	solutionDAO := connectDAO(c)
	if solutionDAO == nil {
		return
	}
	solutionsI, err := solutionDAO.FindAllPhaseI()
	if err != nil {
		c.JSON(http.StatusBadRequest, err.Error())
		return
	}
	solutionsII, err := solutionDAO.FindAllPhaseII()
	if err != nil {
		c.JSON(http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase_i": solutionsI, "phase_ii": solutionsII})
}

// This handler will match /api/solutions/:id
// Retrieves the solution with the correspondent :id, whatever its phase
func solutionByID(c *gin.Context) {
	id := c.Param("id")
	solutionDAO := connectDAO(c)
	if solutionDAO == nil {
		return
	}
	if solution, err := solutionDAO.FindPhaseIByID(id); err == nil {
		c.JSON(http.StatusOK, solution)
		return
	}
	solution, err := solutionDAO.FindPhaseIIByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, solution)
}

// This handler will match /api/solutions/:id
// Delete the solution with the correspondent :id, whatever its phase
func deleteSolutionByID(c *gin.Context) {
	id := c.Param("id")
	solutionDAO := connectDAO(c)
	if solutionDAO == nil {
		return
	}
	errI := solutionDAO.DeletePhaseIByID(id)
	errII := solutionDAO.DeletePhaseIIByID(id)
	if errI != nil && errII != nil {
		c.JSON(http.StatusNotFound, "Solution "+id+" is not stored")
		return
	}
	c.JSON(http.StatusOK, "Solution removed")
}

//Run both phases of the method over a problem
func solveBothPhases(problem *types.Problem, withPhaseII bool) (*types.SolutionI, *types.SolutionII, error) {
	orchestrator := newOrchestrator()
	phaseI, err := newPhaseI(problem, orchestrator)
	if err != nil {
		return nil, nil, err
	}
	solutionI, err := phaseI.Solve(true)
	if err != nil {
		return nil, nil, err
	}
	if !withPhaseII || solutionI.SolvingStats.Algorithm.Status != types.StatusOptimal {
		return solutionI, nil, nil
	}
	phaseII, err := newPhaseII(problem, solutionI, orchestrator)
	if err != nil {
		return nil, nil, err
	}
	solutionII, err := phaseII.SolvePeriod(nil)
	if err != nil {
		return nil, nil, err
	}
	return solutionI, solutionII, nil
}
